/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allbin/go-serialid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture <port> <output-file>",
	Short: "Capture serial data to a file",
	Long: `Capture incoming serial data to a file for later parsing.

Reads data from the specified serial port and writes it directly to the
output file. Runs until interrupted (Ctrl+C), until --duration has passed,
or until the device is unplugged.

The output file is opened in append mode, allowing you to resume captures
without overwriting existing data.

Example usage:
  serialid capture /dev/ttyUSB0 data.log
  serialid capture /dev/ttyUSB0 output.txt --baud 9600
  serialid capture /dev/ttyUSB0 capture.log --console --duration 1m
  serialid capture --vid 2341 capture.log`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		// With a selector flag the port argument may be left out
		portPath, outputPath := "", args[0]
		if len(args) == 2 {
			portPath, outputPath = args[0], args[1]
		}

		showConsole, _ := cmd.Flags().GetBool("console")
		duration, _ := cmd.Flags().GetDuration("duration")
		interval, _ := cmd.Flags().GetDuration("poll")

		logger := newLogger()
		defer logger.Sync()

		if err := runCapture(cmd, portPath, outputPath, showConsole, duration, interval, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)

	addLineFlags(captureCmd)
	addSelectorFlags(captureCmd)
	captureCmd.Flags().BoolP("console", "c", false, "Display incoming data on console while capturing")
	captureCmd.Flags().DurationP("duration", "d", 0, "Stop after this long (0 runs until interrupted)")
	captureCmd.Flags().Duration("poll", 10*time.Millisecond, "Interval between reads")
}

func runCapture(cmd *cobra.Command, portPath, outputPath string, showConsole bool, duration, interval time.Duration, logger *zap.Logger) error {
	port, err := openPort(cmd, portPath, true, false, logger, serial.WithNonBlocking())
	if err != nil {
		return fmt.Errorf("failed to open port: %w", err)
	}
	defer port.Close()

	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer file.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	fmt.Fprintf(os.Stderr, "Capturing data from %s (%s) to %s\n", port.Path(), port.Config(), outputPath)
	if showConsole {
		fmt.Fprintf(os.Stderr, "Console display enabled\n")
	}
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop\n\n")

	bytesWritten := int64(0)
	startTime := time.Now()

	err = pollPort(ctx, port, interval, func(data []byte) error {
		written, err := file.Write(data)
		if err != nil {
			return fmt.Errorf("write error: %w", err)
		}
		bytesWritten += int64(written)

		if showConsole {
			os.Stdout.Write(data)
		}
		return nil
	})

	elapsed := time.Since(startTime).Round(time.Millisecond)
	if errors.Is(err, serial.ErrDeviceDisconnected) {
		fmt.Fprintf(os.Stderr, "\nDevice disconnected: %d bytes written in %v\n", bytesWritten, elapsed)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "\nCapture complete: %d bytes written in %v\n", bytesWritten, elapsed)
	return nil
}
