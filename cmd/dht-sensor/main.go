// Command dht-sensor reads a DHT11/DHT22-class humidity/temperature sensor
// over GPIO and publishes decoded readings to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/dht-sensor/internal/dht"
	"github.com/sweeney/dht-sensor/internal/gpio"
	"github.com/sweeney/dht-sensor/internal/mqtt"
	"github.com/sweeney/dht-sensor/internal/status"
	"github.com/sweeney/dht-sensor/internal/web"
)

func main() {
	pin := flag.Int("pin", gpio.DefaultPin, "BCM pin number of the sensor data line")
	chip := flag.String("chip", gpio.DefaultChip, "GPIO character device name")
	poll := flag.Duration("poll", 10*time.Second, "Sensor read interval (the sensor needs 2s between reads)")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	wake := flag.Duration("wake", dht.WakePulse, "Wake pulse length (2ms against simulated sensors)")
	printReading := flag.Bool("print-reading", false, "Read the sensor once, print, and exit")
	retries := flag.Int("retries", 5, "Read attempts in -print-reading mode")

	flag.Parse()

	if err := run(*pin, *chip, *poll, *broker, *heartbeat, *httpAddr, *wake, *printReading, *retries); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(pin int, chip string, poll time.Duration, broker string, heartbeat time.Duration, httpAddr string, wake time.Duration, printReading bool, retries int) error {
	// Initialize GPIO and the decode chain
	line, err := gpio.NewRealLine(chip, pin)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer line.Close()

	clock := gpio.NewRealClock()
	decoder := dht.NewDecoder(line, clock, dht.RuntimeGuard{}, wake)
	source := dht.NewRateLimiter(decoder, clock, dht.MinReadInterval)

	// Print reading mode
	if printReading {
		return printOnce(source, retries)
	}

	// Initialize MQTT
	publisher := mqtt.NewRealPublisher(broker)
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PinBCM:      pin,
		PollMs:      poll.Milliseconds(),
		HeartbeatMs: heartbeat.Milliseconds(),
		WakePulseUs: wake.Microseconds(),
		Broker:      broker,
		HTTPAddr:    httpAddr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: pin=%d poll=%v broker=%s heartbeat=%v wake=%v", pin, poll, broker, heartbeat, wake)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(source, publisher, publisher, tracker, heartbeat, time.Now, ticker.C, sigCh)
}

// printOnce reads the sensor with bounded retries, waiting out the recovery
// interval between attempts, and prints the decoded values.
func printOnce(source dht.Source, retries int) error {
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		if attempt > 1 {
			time.Sleep(dht.MinReadInterval)
		}
		reading, err := source.Decode()
		if err != nil {
			lastErr = err
			log.Printf("attempt %d/%d: %v", attempt, retries, err)
			continue
		}
		fmt.Printf("humidity: %.1f%%\ntemperature: %.1f C\n", reading.Humidity(), reading.Temperature())
		return nil
	}
	return fmt.Errorf("read sensor: %w", lastErr)
}

func runLoop(source dht.Source, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			reading, err := source.Decode()
			if err != nil {
				log.Printf("read failed: %v", err)
				if tracker != nil {
					tracker.RecordFailure(err)
				}
				if perr := publisher.PublishError(mqtt.ErrorEvent{Timestamp: t, Err: err}); perr != nil {
					log.Printf("publish error: %v", perr)
					// Don't crash on publish failure
				}
			} else {
				log.Printf("reading: humidity=%.1f%% temperature=%.1fC raw=%x",
					reading.Humidity(), reading.Temperature(), reading.Payload())
				if tracker != nil {
					tracker.RecordReading(t, reading)
				}
				if perr := publisher.Publish(mqtt.ReadingEvent{Timestamp: t, Reading: reading}); perr != nil {
					log.Printf("publish error: %v", perr)
				}
			}

			// Update connectivity for HTTP consumers
			if tracker != nil && mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}

			// Check for heartbeat
			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					snap := tracker.Snapshot()
					log.Printf("heartbeat: uptime=%v ok=%d failures=%d",
						snap.Uptime().Truncate(time.Second), snap.Counts.OK, snap.Counts.Failures())
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
