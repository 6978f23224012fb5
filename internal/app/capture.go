package app

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jacobsa/go-serial/serial"
)

// csvHeaderPrefix is the handshake line a unit emits before data so the
// capture side learns the column set.
const csvHeaderPrefix = "CSV_HEADER:"

// defaultColumns is assumed when capture starts mid-stream and never sees
// the handshake. Same order the unit emits.
var defaultColumns = []string{
	"Uptime_ms", "Temperature_C", "Pressure_hPa",
	"AngleX", "AngleY", "AngleZ",
	"AccX_g", "AccY_g", "AccZ_g", "Altitude_m",
}

// RunCapture listens on a serial port for telemetry CSV lines, prepends
// local Date and Time columns, and appends them to outfile. Boot and
// debug chatter on the line is skipped. Runs until interrupted.
func RunCapture(portName string, baud uint, outfile string) error {
	port, err := serial.Open(serial.OpenOptions{
		PortName:        portName,
		BaudRate:        baud,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
	if err != nil {
		return fmt.Errorf("capture: open serial port %s: %w", portName, err)
	}
	defer port.Close()
	log.Printf("capture: listening on %s @ %d", portName, baud)

	f, err := os.OpenFile(outfile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("capture: open %s: %w", outfile, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("capture: stat %s: %w", outfile, err)
	}
	headerWritten := stat.Size() > 0
	if headerWritten {
		log.Printf("capture: appending to existing file %s", outfile)
	} else {
		log.Printf("capture: creating new file %s", outfile)
	}

	writer := csv.NewWriter(f)
	defer writer.Flush()

	// Closing the port unblocks the scanner on Ctrl+C.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("capture: interrupt received, stopping")
		port.Close()
	}()

	var columns []string
	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, csvHeaderPrefix) {
			columns = splitFields(strings.TrimPrefix(line, csvHeaderPrefix))
			if !headerWritten {
				header := append([]string{"Date", "Time"}, columns...)
				if err := writer.Write(header); err != nil {
					return fmt.Errorf("capture: write header: %w", err)
				}
				writer.Flush()
				headerWritten = true
				log.Printf("capture: wrote header: %s", strings.Join(header, ","))
			}
			continue
		}

		// Skip boot/debug chatter; data lines start with a digit.
		if line[0] < '0' || line[0] > '9' {
			log.Printf("capture: skipped: %s", line)
			continue
		}

		if columns == nil {
			columns = defaultColumns
			if !headerWritten {
				header := append([]string{"Date", "Time"}, columns...)
				if err := writer.Write(header); err != nil {
					return fmt.Errorf("capture: write header: %w", err)
				}
				writer.Flush()
				headerWritten = true
				log.Println("capture: no handshake seen, wrote default header")
			}
		}

		parts := splitFields(line)
		// Pad or trim to the learned column set.
		for len(parts) < len(columns) {
			parts = append(parts, "")
		}
		parts = parts[:len(columns)]

		now := time.Now()
		row := append([]string{
			now.Format("2006-01-02"),
			now.Format("15:04:05.000"),
		}, parts...)

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("capture: write row: %w", err)
		}
		writer.Flush()
	}

	// A closed port reads as an error; treat it as a normal stop.
	if err := scanner.Err(); err != nil {
		log.Printf("capture: read stopped: %v", err)
	}
	return nil
}

// splitFields splits a comma- or tab-separated line into trimmed fields.
func splitFields(line string) []string {
	sep := ","
	if strings.Contains(line, "\t") && !strings.Contains(line, ",") {
		sep = "\t"
	}
	raw := strings.Split(line, sep)
	fields := make([]string, 0, len(raw))
	for _, f := range raw {
		if f = strings.TrimSpace(f); f != "" || sep == "," {
			fields = append(fields, f)
		}
	}
	return fields
}
