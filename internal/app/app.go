package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Speshl/gorrc_rover/internal/buzzer"
	"github.com/Speshl/gorrc_rover/internal/config"
	"github.com/Speshl/gorrc_rover/internal/vehicle/rover"
	socketio "github.com/googollee/go-socket.io"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 5 * time.Second
	startupChirp    = 100 * time.Millisecond
)

type App struct {
	ctx       context.Context
	ctxCancel context.CancelFunc

	cfg config.Config

	rover     *rover.Rover
	buzzer    *buzzer.Buzzer
	buzzerPin buzzerPin

	sessions *SessionRegistry
	health   *HealthReporter

	socketServer *socketio.Server
	server       *http.Server
	mqtt         *MQTTSession
	mirror       *StateMirror

	connLock  sync.Mutex
	userConns map[string]*Connection
}

func NewApp(cfg config.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())

	pin := newBuzzerPin(cfg.BuzzerCfg)
	carBuzzer := buzzer.NewBuzzer(cfg.BuzzerCfg, pin)
	ranger, adc := newSensors(cfg.SensorCfg)
	sessions := NewSessionRegistry()

	a := &App{
		ctx:       ctx,
		ctxCancel: cancel,
		cfg:       cfg,
		buzzer:    carBuzzer,
		buzzerPin: pin,
		rover:     rover.NewRover(cfg.RoverCfg, newMotorDriver(cfg.MotorCfg), ranger, adc, carBuzzer, nil),
		sessions:  sessions,
		health:    NewHealthReporter(cfg.HealthCfg, sessions),
		userConns: make(map[string]*Connection),
	}

	if cfg.ServerCfg.SocketIOEnabled {
		a.socketServer = a.newSocketServer()
	}
	if cfg.MQTTCfg.Enabled {
		a.mqtt = NewMQTTSession(cfg.MQTTCfg, a.rover, sessions)
	}
	if cfg.RedisCfg.Enabled {
		a.mirror = NewStateMirror(cfg.RedisCfg, a.rover)
	}

	var socketHandler http.Handler
	if a.socketServer != nil {
		socketHandler = a.socketServer
	}
	a.server = &http.Server{
		Addr:              cfg.ServerCfg.ListenAddress,
		Handler:           NewRouter(a.rover, sessions, a.health, socketHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a
}

func (a *App) Start() error {
	group, groupCtx := errgroup.WithContext(a.ctx)
	log.Println("starting...")

	err := a.rover.Init()
	if err != nil {
		log.Warnf("rover hardware not fully available, continuing best effort - %s", err.Error())
	}

	defer func() {
		log.Println("stopping...")
		err := a.buzzerPin.Close()
		if err != nil {
			log.Printf("error closing buzzer pin - %s", err.Error())
		}
	}()

	//kill listener
	group.Go(func() error {
		signalChannel := make(chan os.Signal, 1)
		signal.Notify(signalChannel, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(signalChannel)
		select {
		case sig := <-signalChannel:
			log.Printf("received signal: %s", sig)
			a.ctxCancel()
			return nil
		case <-groupCtx.Done():
			log.Println("closing signal goroutine")
			return nil
		}
	})

	group.Go(func() error {
		return a.buzzer.Start(groupCtx)
	})

	//Start rover loops
	group.Go(func() error {
		return a.rover.Start(groupCtx)
	})

	group.Go(func() error {
		return a.health.Start(groupCtx)
	})

	if a.socketServer != nil {
		group.Go(func() error {
			err := a.socketServer.Serve()
			if err != nil && groupCtx.Err() == nil {
				return fmt.Errorf("socket.io server stopped - %w", err)
			}
			return nil
		})
	}

	if a.mqtt != nil {
		group.Go(func() error {
			return a.mqtt.Start(groupCtx)
		})
	}

	if a.mirror != nil {
		group.Go(func() error {
			return a.mirror.Start(groupCtx, a.cfg.RoverCfg.ControlTick)
		})
	}

	group.Go(func() error {
		log.Printf("listening on %s", a.server.Addr)
		err := a.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error listening on %s - %w", a.server.Addr, err)
		}
		return nil
	})

	//shutdown transports once anything stops
	group.Go(func() error {
		<-groupCtx.Done()
		a.shutdown()
		return nil
	})

	a.buzzer.Alert(startupChirp)

	err = group.Wait()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Println("context was cancelled")
			return nil
		}
		return fmt.Errorf("rover stopping due to error - %w", err)
	}

	log.Println("shutting down")
	return nil
}

func (a *App) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	if err != nil {
		log.Printf("error shutting down http server - %s", err.Error())
	}

	a.dropAllConnections()
	if a.socketServer != nil {
		err = a.socketServer.Close()
		if err != nil {
			log.Printf("error closing socket.io server - %s", err.Error())
		}
	}
}
