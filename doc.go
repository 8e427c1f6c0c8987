// Package serial discovers the serial devices attached to a Linux machine,
// identifies the USB hardware behind them, and opens them for raw I/O.
//
// # Discovery
//
// A Detector walks a device registry from every serial device up through
// its ancestors until it reaches a USB device, and reads the vendor ID,
// product ID, location ID and serial number from there. Names are resolved
// with a USB identity table:
//
//	detector, err := serial.NewDetector()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ports, err := detector.DiscoverSerialPorts()
//	for _, p := range ports {
//	    fmt.Println(p) // /dev/ttyACM0 (2341:43 Arduino SA Uno R3 (CDC ACM))
//	}
//
// Devices whose metadata cannot be read are skipped and logged. Use
// DiscoverReport to get the reasons alongside the ports.
//
// The registry defaults to sysfs. Pass WithRegistry to walk another tree,
// for example the bugst enumerator from the registry package or a fake in
// tests. The identity table defaults to a small built-in set of USB to
// serial bridges; WithIdentityFile loads a JSON table or a usb.ids file.
//
// FindPort returns the first port accepted by a Matcher:
//
//	meta, err := detector.FindPort(serial.ByVendorProduct("0x2341", "0043"))
//
// # Opening a port
//
// A Port is created closed, from discovered metadata or a bare path, and
// opened for reading, writing or both:
//
//	port, err := serial.NewPort(meta,
//	    serial.WithLineConfig(serial.LineConfig{
//	        RxBaudRate: serial.Baud9600,
//	        TxBaudRate: serial.Baud9600,
//	        Parity:     serial.ParityEven,
//	        DataBits:   7,
//	    }),
//	)
//	if err := port.Open(true, true); err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
// Open puts the terminal into raw mode and applies the line settings. The
// settings can be changed while the port is open with SetConfig or
// UpdateConfig; a rejected change leaves the previous settings in place.
// Rates outside the standard termios table are set with BOTHER.
//
// Read and ReadBytes check that the device node still exists before every
// read and fail with ErrDeviceDisconnected once it has been unplugged.
//
// A Port is not safe for concurrent use. Open it with WithNonBlocking and
// poll ReadBytes from one goroutine when reads must not block.
//
// # Errors
//
// Every error belongs to one of five categories that can be tested with
// errors.Is: ErrConfiguration, ErrResourceUnavailable, ErrState,
// ErrDataIntegrity and ErrIO.
//
//	if errors.Is(err, serial.ErrDeviceDisconnected) {
//	    // reopen after the device comes back
//	}
//
// # Default Configuration
//
//   - BaudRate: 115200 in both directions
//   - DataBits: 8
//   - StopBits: 1
//   - Parity: None
package serial
