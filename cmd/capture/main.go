package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/sensor_monitor/internal/app"
)

func main() {
	port := flag.String("port", "/dev/ttyUSB0", "serial port the unit is attached to")
	baud := flag.Uint("baud", 115200, "serial baud rate")
	out := flag.String("out", "telemetry.csv", "output CSV file (appended to if it exists)")
	flag.Parse()

	log.Println("starting sensor-monitor serial capture")

	if err := app.RunCapture(*port, *baud, *out); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
