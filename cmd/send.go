/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/allbin/go-serialid"
	"github.com/allbin/go-serialid/internal/tui/components"
	"github.com/allbin/go-serialid/internal/tui/styles"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [data] <port>",
	Short: "Send data to a serial port",
	Long: `Send data to a serial port with configurable line settings.

Data can be provided as:
- Command line argument: send "Hello World" /dev/ttyUSB0
- From stdin (pipe): echo "test data" | serialid send /dev/ttyUSB0
- Interactive mode: serialid send /dev/ttyUSB0 (prompts for input)

With --response the port is opened for reading too and whatever the device
answers within that time is printed.

Example usage:
  serialid send "Hello World" /dev/ttyUSB0
  serialid send "AT+GMR" /dev/ttyUSB0 --newline --response 500ms
  serialid send 48656c6c6f /dev/ttyACM0 --hex --baud 9600 --parity even
  echo "test" | serialid send /dev/ttyUSB0
  serialid send /dev/ttyUSB0  # Interactive mode`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		var data string
		var portPath string

		// Parse arguments: either "send data port" or "send port"
		if len(args) == 1 {
			portPath = args[0]
			stat, err := os.Stdin.Stat()
			if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
				data = promptForData()
			} else {
				stdinData, err := io.ReadAll(os.Stdin)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error reading from stdin: %v\n", err)
					os.Exit(1)
				}
				data = strings.TrimRight(string(stdinData), "\r\n")
			}
		} else {
			data = args[0]
			portPath = args[1]
		}

		addNewline, _ := cmd.Flags().GetBool("newline")
		hexMode, _ := cmd.Flags().GetBool("hex")
		flush, _ := cmd.Flags().GetBool("flush")
		response, _ := cmd.Flags().GetDuration("response")

		payload := []byte(data)
		if hexMode {
			decoded, err := components.ParseHex(data)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid hex data: %v\n", err)
				os.Exit(1)
			}
			payload = decoded
		}
		if addNewline && !hexMode {
			payload = append(payload, '\n')
		}

		logger := newLogger()
		defer logger.Sync()

		if err := sendData(cmd, portPath, payload, flush, response, logger); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", styles.ErrorStyle.Render("✗"), err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	addLineFlags(sendCmd)
	sendCmd.Flags().BoolP("newline", "n", false, "Add newline character to the end of data")
	sendCmd.Flags().BoolP("hex", "x", false, "Interpret data as hexadecimal (e.g., '48656c6c6f' for 'Hello')")
	sendCmd.Flags().Bool("flush", false, "Discard pending input and output before sending")
	sendCmd.Flags().DurationP("response", "r", 0, "Print what the device answers within this time")
}

func promptForData() string {
	fmt.Print(styles.HeaderStyle.Render("Enter data to send: "))

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}

func sendData(cmd *cobra.Command, portPath string, data []byte, flush bool, response time.Duration, logger *zap.Logger) error {
	fmt.Printf("%s Opening %s...\n", styles.HeaderStyle.Render("⚡"), portPath)

	readBack := response > 0
	var opts []serial.PortOption
	if readBack {
		opts = append(opts, serial.WithNonBlocking())
	}

	port, err := openPort(cmd, portPath, readBack, true, logger, opts...)
	if err != nil {
		return err
	}
	defer port.Close()

	fmt.Printf("%s Connected at %s\n", styles.SuccessStyle.Render("✓"), port.Config())

	if flush {
		if err := port.Flush(); err != nil {
			return fmt.Errorf("failed to flush port: %w", err)
		}
	}

	fmt.Printf("%s Sending %d bytes...\n", styles.HeaderStyle.Render("📤"), len(data))
	n, err := writeAll(port, data)
	if err != nil {
		return fmt.Errorf("failed to send data after %d bytes: %w", n, err)
	}
	fmt.Printf("%s Successfully sent %d bytes\n", styles.SuccessStyle.Render("✓"), n)
	fmt.Printf("%s Data: %s\n", styles.HeaderStyle.Render("📋"), preview(data, 50))

	if !readBack {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), response)
	defer cancel()

	var answer []byte
	err = pollPort(ctx, port, 10*time.Millisecond, func(chunk []byte) error {
		answer = append(answer, chunk...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(answer) == 0 {
		fmt.Printf("%s No response within %v\n", styles.WarningStyle.Render("…"), response)
		return nil
	}
	fmt.Printf("%s Received %d bytes: %s\n", styles.SuccessStyle.Render("📥"), len(answer), preview(answer, 80))
	fmt.Printf("   HEX: %s\n", components.FormatHex(answer))
	return nil
}

// preview shows at most max bytes with non-printable characters replaced
func preview(data []byte, max int) string {
	truncated := len(data) > max
	if truncated {
		data = data[:max]
	}
	s := strings.Map(func(r rune) rune {
		if r < 32 || r > 126 {
			return '·'
		}
		return r
	}, string(data))
	if truncated {
		s += "..."
	}
	return s
}
