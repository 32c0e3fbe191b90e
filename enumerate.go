package serialport

import (
	"context"
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
	"golang.org/x/sync/errgroup"
)

// Method selects how an Enumerator discovers ports.
type Method int

const (
	// MethodProbe opens and immediately closes every candidate name.
	MethodProbe Method = iota
	// MethodRegistry asks the OS device registry.
	MethodRegistry
)

const (
	defaultProbeCount       = 256
	defaultProbeConcurrency = 8
)

// Enumerator lists the ports that can currently be opened. It holds no state
// between calls; every List runs a fresh scan.
type Enumerator struct {
	Prefix      string
	First       int
	Count       int
	Method      Method
	Concurrency int

	probe   func(path string) bool
	details func() ([]*enumerator.PortDetails, error)
}

// DefaultEnumerator scans the 256 standard port names of the platform
// (COM1..COM256 on Windows, ttyS0..ttyS255 on Linux).
func DefaultEnumerator() Enumerator {
	return Enumerator{
		Prefix:      standardPrefix,
		First:       firstStandardIndex,
		Count:       defaultProbeCount,
		Method:      MethodProbe,
		Concurrency: defaultProbeConcurrency,
	}
}

// ListPorts returns the openable standard ports, ascending by index.
func ListPorts(ctx context.Context) ([]string, error) {
	return DefaultEnumerator().List(ctx)
}

// List returns the names of the available ports sorted by their numeric
// index. Ports that fail to open are silently skipped and no handle outlives
// the call.
func (e Enumerator) List(ctx context.Context) ([]string, error) {
	if e.Method == MethodRegistry {
		infos, err := e.registry(ctx)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(infos))
		for _, info := range infos {
			names = append(names, info.Name)
		}
		return names, nil
	}
	return e.scan(ctx)
}

func (e Enumerator) scan(ctx context.Context) ([]string, error) {
	probe := e.probe
	if probe == nil {
		probe = probeDevice
	}
	count := e.Count
	if count <= 0 {
		count = defaultProbeCount
	}
	limit := e.Concurrency
	if limit <= 0 {
		limit = 1
	}

	found := make([]bool, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := 0; i < count; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		path := DevicePath(StandardPortName(e.Prefix, e.First+i))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			found[i] = probe(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var names []string
	for i, ok := range found {
		if ok {
			names = append(names, StandardPortName(e.Prefix, e.First+i))
		}
	}
	logger.WithField("count", len(names)).Debug("port scan finished")
	return sortByIndex(names), nil
}

// probeDevice reports whether the device can be acquired right now. The
// handle is released before returning.
func probeDevice(path string) bool {
	if precheckCharDevice && !isCharacterDevice(path) {
		return false
	}
	h, err := openNative(path)
	if err != nil {
		return false
	}
	if err := h.close(); err != nil {
		logger.WithError(err).WithField("path", path).Debug("failed to release probed device")
	}
	return true
}

// Details lists registry-known ports with USB metadata, sorted by index.
func (e Enumerator) Details(ctx context.Context) ([]PortInfo, error) {
	return e.registry(ctx)
}

func (e Enumerator) registry(ctx context.Context) ([]PortInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := e.details
	if query == nil {
		query = enumerator.GetDetailedPortsList
	}
	list, err := query()
	if err != nil {
		return nil, fmt.Errorf("query port registry: %w", err)
	}

	byName := make(map[string]PortInfo, len(list))
	names := make([]string, 0, len(list))
	for _, d := range list {
		if d == nil {
			continue
		}
		name := symbolicName(d.Name)
		if e.Prefix != "" && !strings.HasPrefix(name, e.Prefix) {
			continue
		}
		if _, dup := byName[name]; dup {
			continue
		}
		byName[name] = PortInfo{
			Name:         name,
			Path:         DevicePath(name),
			Description:  Description(name),
			IsUSB:        d.IsUSB,
			VendorID:     d.VID,
			ProductID:    d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		}
		names = append(names, name)
	}

	infos := make([]PortInfo, 0, len(names))
	for _, name := range sortByIndex(names) {
		infos = append(infos, byName[name])
	}
	return infos, nil
}
