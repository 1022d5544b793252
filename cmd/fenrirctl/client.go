package main

import (
	"fmt"
	"io"
	"net"
	"time"

	fenrirnet "fenrir/internal/net"
)

// dialAndAwaitReports opens a connection to serverAddr, sends frame,
// then prints every Report it receives for window before closing.
func dialAndAwaitReports(frame []byte, window time.Duration) error {
	conn, err := net.DialTimeout("tcp", serverAddr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", serverAddr, err)
	}
	defer conn.Close()

	if _, err := conn.Write(frame); err != nil {
		return fmt.Errorf("sending request: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(window))
	buffer := make([]byte, 4*1024)
	for {
		n, err := conn.Read(buffer)
		if n > 0 {
			printReport(buffer[:n])
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				return nil
			}
			return fmt.Errorf("reading response: %w", err)
		}
	}
}

func printReport(buf []byte) {
	for len(buf) > 0 {
		report, err := fenrirnet.ParseReport(buf)
		if err != nil {
			fmt.Printf("malformed report: %v\n", err)
			return
		}
		buf = buf[len(report.Serialize()):]

		switch report.MessageType {
		case fenrirnet.ErrorReport:
			fmt.Printf("error: %s\n", report.Err)
		case fenrirnet.BookReport:
			fmt.Printf("%s\n%s\n", report.Symbol, report.Body)
		case fenrirnet.ExecutionReport:
			fmt.Printf("execution: %s %s qty=%d price=%.4f order=%s\n",
				report.Side, report.Symbol, report.Quantity, report.Price, report.OrderID)
		}
	}
}
