/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/allbin/go-serialid"
	"github.com/allbin/go-serialid/registry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "serialid",
	Short: "Discover, identify and talk to serial devices",
	Long: `serialid finds the serial devices attached to this machine, resolves
the USB vendor and product behind each of them, and opens them for reading
and writing.

Discovery walks the kernel device tree from every tty up to the USB device
that owns it. Vendor and product names come from an identity table, either
the built-in one or a file given with --usbids (JSON or usb.ids format).

Settings can be given as flags, as SERIALID_* environment variables, or in
$HOME/.serialid.yaml.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Bind the flags of the command being run so that viper sees them
		// ahead of the environment and the config file.
		return viper.BindPFlags(cmd.Flags())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.serialid.yaml)")
	rootCmd.PersistentFlags().String("usbids", "", "USB identity table (JSON or usb.ids format)")
	rootCmd.PersistentFlags().String("source", "sysfs", "Device tree source: sysfs or enumerator")
	rootCmd.PersistentFlags().String("sysfs-root", "/sys", "Root of the sysfs tree")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log discovery details to stderr")
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
		viper.SetConfigName(".serialid")
	}

	viper.SetEnvPrefix("serialid")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger writes human readable logs to stderr: warnings by default,
// everything with --verbose.
func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if viper.GetBool("verbose") {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// newRegistry picks the device tree the detector walks
func newRegistry() (registry.Registry, error) {
	switch strings.ToLower(viper.GetString("source")) {
	case "", "sysfs":
		return registry.NewSysfs(registry.WithSysfsRoot(viper.GetString("sysfs-root"))), nil
	case "enumerator":
		return registry.NewEnumerator(), nil
	default:
		return nil, fmt.Errorf("unknown device source %q (expected sysfs or enumerator)", viper.GetString("source"))
	}
}

func newDetector(logger *zap.Logger) (*serial.Detector, error) {
	reg, err := newRegistry()
	if err != nil {
		return nil, err
	}

	opts := []serial.DetectorOption{
		serial.WithRegistry(reg),
		serial.WithDetectorLogger(logger),
	}
	if path := viper.GetString("usbids"); path != "" {
		opts = append(opts, serial.WithIdentityFile(path))
	}
	return serial.NewDetector(opts...)
}

// addLineFlags registers the line setting flags shared by the commands that
// open a port.
func addLineFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("baud", "b", 115200, "Baud rate (any positive rate, non-standard rates use BOTHER)")
	cmd.Flags().Int("rx-baud", 0, "Receive baud rate when it differs from --baud")
	cmd.Flags().Int("data-bits", 8, "Data bits: 5, 6, 7 or 8")
	cmd.Flags().String("parity", "none", "Parity: none, odd or even")
	cmd.Flags().Bool("two-stop-bits", false, "Use two stop bits")
}

// lineConfig builds the line settings from the flags registered by
// addLineFlags, as merged by viper.
func lineConfig() (serial.LineConfig, error) {
	parity, err := serial.ParseParity(viper.GetString("parity"))
	if err != nil {
		return serial.LineConfig{}, err
	}

	baud, err := serial.CustomBaudRate(viper.GetInt("baud"))
	if err != nil {
		return serial.LineConfig{}, err
	}

	opts := []serial.ConfigOption{
		serial.WithBaudRate(baud),
		serial.WithParity(parity),
		serial.WithDataBits(viper.GetInt("data-bits")),
		serial.WithTwoStopBits(viper.GetBool("two-stop-bits")),
	}
	if rx := viper.GetInt("rx-baud"); rx != 0 {
		rxBaud, err := serial.CustomBaudRate(rx)
		if err != nil {
			return serial.LineConfig{}, err
		}
		opts = append(opts, serial.WithRxBaudRate(rxBaud))
	}

	return serial.DefaultLineConfig().With(opts...)
}

// addSelectorFlags registers the flags that pick a port by its identity
// instead of its path.
func addSelectorFlags(cmd *cobra.Command) {
	cmd.Flags().String("vid", "", "Select the port by USB vendor ID")
	cmd.Flags().String("pid", "", "Narrow --vid to a USB product ID")
	cmd.Flags().String("serial", "", "Select the port by USB serial number")
	cmd.Flags().String("location", "", "Select the port by USB location ID")
}

// selector turns the selector flags into a matcher, nil when none is set
func selector(cmd *cobra.Command) serial.Matcher {
	vid, _ := cmd.Flags().GetString("vid")
	pid, _ := cmd.Flags().GetString("pid")
	serialNumber, _ := cmd.Flags().GetString("serial")
	location, _ := cmd.Flags().GetString("location")

	switch {
	case vid != "":
		return serial.ByVendorProduct(vid, pid)
	case serialNumber != "":
		return serial.BySerialNumber(serialNumber)
	case location != "":
		return serial.ByLocation(location)
	default:
		return nil
	}
}

// resolvePort finds the metadata of the port named by path or by the
// selector flags. A path that discovery does not report is still usable:
// pseudo terminals and devices behind unusual drivers can be opened without
// metadata.
func resolvePort(cmd *cobra.Command, path string, logger *zap.Logger) (serial.PortMetadata, error) {
	match := selector(cmd)
	if match == nil && path == "" {
		return serial.PortMetadata{}, fmt.Errorf("no port given: pass a device path or one of --vid, --serial, --location")
	}
	if match == nil {
		match = serial.ByPath(path)
	}

	detector, err := newDetector(logger)
	if err != nil {
		return serial.PortMetadata{}, err
	}

	meta, err := detector.FindPort(match)
	if err == nil {
		return meta, nil
	}
	if path != "" {
		logger.Debug("port not found by discovery, opening by path",
			zap.String("path", path),
			zap.Error(err))
		return serial.PortMetadata{Path: path}, nil
	}
	return serial.PortMetadata{}, err
}

// openPort resolves, configures and opens a port in one go
func openPort(cmd *cobra.Command, path string, rx, tx bool, logger *zap.Logger, opts ...serial.PortOption) (*serial.Port, error) {
	meta, err := resolvePort(cmd, path, logger)
	if err != nil {
		return nil, err
	}

	cfg, err := lineConfig()
	if err != nil {
		return nil, err
	}

	opts = append([]serial.PortOption{serial.WithLineConfig(cfg), serial.WithLogger(logger)}, opts...)
	port, err := serial.NewPort(meta, opts...)
	if err != nil {
		return nil, err
	}
	if err := port.Open(rx, tx); err != nil {
		return nil, err
	}
	return port, nil
}
