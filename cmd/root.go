/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/allbin/go-serialport"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "serialport",
	Short: "Open, probe and exchange data with serial ports",
	Long: `serialport drives the serial ports of this machine.

It lists the standard ports that can currently be opened, sends and reads raw
bytes with fixed short timeouts, flushes queued I/O and checks loopback-wired
port pairs.

Line settings default to 9600 8N1 and can be set with flags, SERIALPORT_*
environment variables or ~/.serialport.yaml.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.serialport.yaml)")
	flags.BoolP("verbose", "v", false, "Log port lifecycle events")
	flags.String("log-format", "text", "Log format: text, json")

	flags.IntP("baud", "b", 9600, "Baud rate")
	flags.Int("data-bits", 8, "Data bits: 5, 6, 7, 8")
	flags.String("stop-bits", "1", "Stop bits: 1, 1.5, 2")
	flags.StringP("parity", "p", "none", "Parity: none, odd, even, mark, space")
	flags.Duration("read-interval", serialport.DefaultTimeouts().ReadInterval, "Maximum gap between received bytes")
	flags.Duration("read-timeout", serialport.DefaultTimeouts().ReadTotalConstant, "Total read timeout")
	flags.Duration("write-timeout", serialport.DefaultTimeouts().WriteTotalConstant, "Total write timeout")
	flags.String("prefix", "", "Port name prefix used when listing (default is the platform's)")

	for key, flag := range map[string]string{
		"verbose":       "verbose",
		"log_format":    "log-format",
		"baud":          "baud",
		"data_bits":     "data-bits",
		"stop_bits":     "stop-bits",
		"parity":        "parity",
		"read_interval": "read-interval",
		"read_timeout":  "read-timeout",
		"write_timeout": "write-timeout",
		"prefix":        "prefix",
	} {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(flag)))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".serialport")
	}

	viper.SetEnvPrefix("serialport")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setupLogging() error {
	logger := logrus.StandardLogger()
	logger.SetOutput(os.Stderr)

	switch strings.ToLower(viper.GetString("log_format")) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", viper.GetString("log_format"))
	}

	if viper.GetBool("verbose") {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	serialport.SetLogger(logger)
	return nil
}

// portOptions builds the line settings and timeouts from flags, environment
// and config file.
func portOptions() ([]serialport.Option, error) {
	stopBits, err := serialport.ParseStopBits(viper.GetString("stop_bits"))
	if err != nil {
		return nil, err
	}
	parity, err := serialport.ParseParity(viper.GetString("parity"))
	if err != nil {
		return nil, err
	}

	return []serialport.Option{
		serialport.WithBaudRate(viper.GetInt("baud")),
		serialport.WithDataBits(viper.GetInt("data_bits")),
		serialport.WithStopBits(stopBits),
		serialport.WithParity(parity),
		serialport.WithReadTimeouts(viper.GetDuration("read_interval"), viper.GetDuration("read_timeout")),
		serialport.WithWriteTimeout(viper.GetDuration("write_timeout")),
	}, nil
}

// openPort opens name with the configured options.
func openPort(name string) (*serialport.Port, error) {
	opts, err := portOptions()
	if err != nil {
		return nil, err
	}
	port := serialport.New(opts...)
	if err := port.Open(name); err != nil {
		return nil, err
	}
	return port, nil
}
