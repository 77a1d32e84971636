package location

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/tarm/serial"
)

var (
	// ErrNoFix is returned when the sensor stream ends without a usable GGA sentence.
	ErrNoFix = errors.New("no valid GPS data found")
	// ErrInvalidFix is returned when a provider answers with out-of-range coordinates.
	ErrInvalidFix = errors.New("location out of range")
)

// DeviceSensorProvider is responsible for retrieving location data from a GPS device connected via serial port.
type DeviceSensorProvider struct {
	port     string // Serial port to which the GPS device is connected
	baudRate int    // Baud rate for the serial communication

	open func() (io.ReadCloser, error)
}

// NewDeviceSensorProvider creates a new instance of DeviceSensorProvider with the specified port and baud rate.
func NewDeviceSensorProvider(port string, baudRate int) *DeviceSensorProvider {
	d := &DeviceSensorProvider{
		port:     port,
		baudRate: baudRate,
	}
	d.open = func() (io.ReadCloser, error) {
		return serial.OpenPort(&serial.Config{Name: d.port, Baud: d.baudRate, ReadTimeout: time.Second})
	}
	return d
}

// NewReaderSensorProvider reads NMEA sentences from an arbitrary stream instead of a serial port.
func NewReaderSensorProvider(open func() (io.ReadCloser, error)) *DeviceSensorProvider {
	return &DeviceSensorProvider{open: open}
}

// GetLocation reads NMEA sentences until the first GGA sentence with a fix, or until ctx is done.
func (d *DeviceSensorProvider) GetLocation(ctx context.Context) (Location, error) {
	s, err := d.open()
	if err != nil {
		return Location{}, err
	}
	defer s.Close()

	scanner := bufio.NewScanner(s)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return Location{}, err
		}

		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$GPGGA") && !strings.HasPrefix(line, "$GNGGA") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			return Location{}, err
		}

		gga, ok := sentence.(nmea.GGA)
		if !ok || gga.FixQuality == nmea.Invalid {
			continue
		}
		return Location{Latitude: gga.Latitude, Longitude: gga.Longitude}, nil
	}

	if err := scanner.Err(); err != nil {
		return Location{}, err
	}
	return Location{}, ErrNoFix
}

// Close releases nothing; the port is opened per read.
func (d *DeviceSensorProvider) Close() error { return nil }
