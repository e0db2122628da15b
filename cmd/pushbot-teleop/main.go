// Command pushbot-teleop drives a differential pushbot from gamepad input
// and reports its state over MQTT and HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sweeney/pushbot-teleop/internal/config"
	"github.com/sweeney/pushbot-teleop/internal/drive"
	"github.com/sweeney/pushbot-teleop/internal/gamepad"
	"github.com/sweeney/pushbot-teleop/internal/mqtt"
	"github.com/sweeney/pushbot-teleop/internal/status"
	"github.com/sweeney/pushbot-teleop/internal/telemetry"
	"github.com/sweeney/pushbot-teleop/internal/teleop"
	"github.com/sweeney/pushbot-teleop/internal/web"
)

type options struct {
	poll       time.Duration
	broker     string
	httpAddr   string
	heartbeat  time.Duration
	configPath string
	input      string
	telemetry  string
	printState bool
}

func main() {
	var o options
	flag.DurationVar(&o.poll, "poll", 20*time.Millisecond, "Control loop period")
	flag.StringVar(&o.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address (empty to disable)")
	flag.StringVar(&o.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.DurationVar(&o.heartbeat, "heartbeat", time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&o.configPath, "config", "", "YAML robot config (defaults when empty)")
	flag.StringVar(&o.input, "input", "gpio", "Gamepad source: gpio, mqtt or sim")
	flag.StringVar(&o.telemetry, "telemetry", "log", "Telemetry sink: off, log or mqtt")
	flag.BoolVar(&o.printState, "print-state", false, "Print pressed buttons and exit")

	flag.Parse()

	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(o options) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	// Initialize MQTT
	var (
		publisher  mqtt.Publisher
		connStatus mqtt.ConnectionStatus
		rp         *mqtt.RealPublisher
	)
	if o.broker != "" && (!o.printState || o.input == "mqtt") {
		rp, err = mqtt.NewRealPublisher(o.broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer rp.Close()
		publisher, connStatus = rp, rp
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	src, closeSrc, err := openSource(o.input, cfg, rp)
	if err != nil {
		return err
	}
	defer closeSrc()

	if err := waitForSource(src, o.poll, sigCh); err != nil {
		return err
	}

	// Print state mode
	if o.printState {
		state, err := src.Poll()
		if err != nil {
			return fmt.Errorf("poll %s: %w", o.input, err)
		}
		fmt.Printf("pressed: %s\n", pressedString(state))
		return nil
	}

	tel, err := newSink(o.telemetry, publisher)
	if err != nil {
		return err
	}
	reporting, err := cfg.Telemetry()
	if err != nil {
		return err
	}

	dt := drive.NewDifferential(drive.NewLogMotor(cfg.Motors.Left), drive.NewLogMotor(cfg.Motors.Right))
	dt.SetRightInverted(cfg.Motors.RightInverted)

	op, err := teleop.New(gamepad.New(src), dt, tel, teleop.Options{
		SlowOutput:       cfg.SlowOutput,
		TelemetryButtons: reporting,
	})
	if err != nil {
		return fmt.Errorf("init op mode: %w", err)
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      o.poll.Milliseconds(),
		HeartbeatMs: o.heartbeat.Milliseconds(),
		Broker:      o.broker,
		HTTPAddr:    o.httpAddr,
		Input:       o.input,
		Telemetry:   o.telemetry,
	})
	tracker.Update(op.Snapshot())

	if publisher != nil {
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
	}

	var srv *web.Server
	if o.httpAddr != "" {
		srv = web.New(o.httpAddr, tracker)
	}

	log.Printf("started: poll=%v input=%s telemetry=%s broker=%s heartbeat=%v", o.poll, o.input, o.telemetry, o.broker, o.heartbeat)

	var g errgroup.Group
	if srv != nil {
		g.Go(func() error {
			log.Printf("http status server listening on %s", o.httpAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server error: %v", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		ticker := time.NewTicker(o.poll)
		defer ticker.Stop()

		err := runLoop(op, publisher, connStatus, tracker, o.heartbeat, time.Now, ticker.C, sigCh)
		if srv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}
		return err
	})
	return g.Wait()
}

// runLoop steps the op mode on every tick until it stops itself or a signal
// arrives. publisher and mqttStatus may be nil.
func runLoop(op *teleop.OpMode, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			if err := op.Stop(); err != nil {
				log.Printf("stop error: %v", err)
			}
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			publishShutdown(op, publisher, mqttStatus, tracker, now(), signalName)
			return nil

		case <-tick:
			t := now()
			if err := op.Step(); err != nil {
				log.Printf("step error: %v", err)
			}
			refresh(op, mqttStatus, tracker)

			if !op.Active() {
				log.Printf("op mode stopped by driver")
				publishShutdown(op, publisher, mqttStatus, tracker, t, "STOP_BUTTON")
				return nil
			}

			if heartbeat <= 0 || t.Sub(lastHeartbeat) < heartbeat {
				continue
			}
			lastHeartbeat = t

			snap := op.Snapshot()
			log.Printf("heartbeat: phase=%s cycles=%d slow=%v", snap.Phase, snap.Cycles, snap.Slow)
			if publisher == nil {
				continue
			}
			hbEvent := mqtt.SystemEvent{
				Timestamp: t,
				Event:     "HEARTBEAT",
			}
			if tracker != nil {
				hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
			}
			if err := publisher.PublishSystem(hbEvent); err != nil {
				log.Printf("heartbeat publish error: %v", err)
			}
		}
	}
}

func refresh(op *teleop.OpMode, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker) {
	if tracker == nil {
		return
	}
	tracker.Update(op.Snapshot())
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
}

func publishShutdown(op *teleop.OpMode, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, t time.Time, reason string) {
	if publisher == nil {
		return
	}
	event := mqtt.SystemEvent{
		Timestamp: t,
		Event:     "SHUTDOWN",
		Reason:    reason,
		Retained:  true,
	}
	if tracker != nil {
		refresh(op, mqttStatus, tracker)
		event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", reason)
	}
	if err := publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}

func newSink(kind string, publisher mqtt.Publisher) (telemetry.Sink, error) {
	switch kind {
	case "off":
		return nil, nil
	case "log":
		return telemetry.NewLogSink(nil), nil
	case "mqtt":
		if publisher == nil {
			return nil, errors.New("telemetry mqtt requires -broker")
		}
		return mqtt.NewTelemetrySink(publisher, time.Now), nil
	default:
		return nil, fmt.Errorf("unknown telemetry sink %q", kind)
	}
}

func pressedString(s gamepad.State) string {
	names := s.PressedNames()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
