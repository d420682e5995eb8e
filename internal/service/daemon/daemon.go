package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/covertcloak/scripture-alarm/internal/api/grpc/control"
	"github.com/covertcloak/scripture-alarm/internal/config"
	"github.com/covertcloak/scripture-alarm/internal/content"
	"github.com/covertcloak/scripture-alarm/internal/device"
	"github.com/covertcloak/scripture-alarm/internal/domain/alarm"
	"github.com/covertcloak/scripture-alarm/internal/logger"
	"github.com/covertcloak/scripture-alarm/internal/preferences"
	"github.com/covertcloak/scripture-alarm/internal/repository/alarms"
	"github.com/covertcloak/scripture-alarm/internal/repository/kv"
	"github.com/covertcloak/scripture-alarm/internal/service/playback"
	"github.com/covertcloak/scripture-alarm/internal/service/scheduler"
	"github.com/covertcloak/scripture-alarm/internal/service/trigger"
	"github.com/covertcloak/scripture-alarm/internal/timer"
)

// Options controls the daemon process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ListenAddress overrides the control API address from the settings.
	ListenAddress string
	// StateFile overrides the key-value state file from the settings.
	StateFile string
	// BibleDB overrides the scripture database path from the settings.
	BibleDB string
}

// Devices are the host collaborators used while an alarm rings.
type Devices struct {
	Haptic    device.Haptic
	Volume    device.Volume
	Synth     device.Synthesizer
	Presenter device.Presenter
}

// HostDevices returns the devices of a desktop or server host: espeak-ng,
// amixer, and logging stand-ins for the vibrator and the notification.
func HostDevices(ctx context.Context, cfg *config.Config) Devices {
	return Devices{
		Haptic:    device.NewLogHaptic(ctx),
		Volume:    device.NewAmixer(cfg.Volume.Control, cfg.Volume.Steps, device.ExecRunner),
		Synth:     device.NewEspeak(cfg.Speech.Command),
		Presenter: device.LogPresenter{},
	}
}

// Run loads the settings, starts the daemon and blocks until ctx is cancelled.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "scripture-alarm")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	applyOverrides(cfg, opts)
	configureLogging(cfg)

	lock, err := acquireInstance(cfg.StateFile + ".pid")
	if err != nil {
		return err
	}

	defer func() {
		if releaseErr := lock.release(); releaseErr != nil {
			logger.WarnKV(ctx, "Failed to release pid file", "error", releaseErr)
		}
	}()

	d, err := New(ctx, cfg, HostDevices(ctx, cfg))
	if err != nil {
		return err
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.ListenAddress, err)
	}

	return d.Serve(ctx, lis)
}

func applyOverrides(cfg *config.Config, opts *Options) {
	if opts.ListenAddress != "" {
		cfg.ListenAddress = opts.ListenAddress
	}

	if opts.StateFile != "" {
		cfg.StateFile = opts.StateFile
	}

	if opts.BibleDB != "" {
		cfg.BibleDB = opts.BibleDB
	}
}

func configureLogging(cfg *config.Config) {
	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	if cfg.LogFile != "" {
		logger.SetLogger(logger.NewWithFile(nil, cfg.LogFile))
	}
}

// Daemon owns every long-lived component of the process.
type Daemon struct {
	cfg *config.Config

	bible      *content.Bible
	synth      device.Synthesizer
	timers     *timer.CronTimers
	scheduler  *scheduler.Scheduler
	controller *trigger.Controller
	server     *grpc.Server
}

// New builds the daemon around the state file named in cfg. Nothing runs
// until Serve is called.
func New(ctx context.Context, cfg *config.Config, devices Devices) (*Daemon, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}

	store := kv.NewFileStore(cfg.StateFile)
	records := alarms.New(store)
	catalog := content.NewCatalog(content.BuiltinVerses(), store)

	d := &Daemon{
		cfg:   cfg,
		synth: devices.Synth,
	}

	// A typed nil would defeat the resolver's nil check.
	var scripture content.Provider

	if cfg.BibleDB != "" {
		bible, err := content.OpenBible(ctx, cfg.BibleDB)
		if err != nil {
			logger.WarnKV(ctx, "Scripture database unavailable, using the built-in verses",
				"path", cfg.BibleDB, "error", err)
		} else {
			d.bible = bible
			scripture = bible
		}
	}

	player := playback.NewPlayer(devices.Haptic, devices.Volume, devices.Synth, playback.Config{
		RampInterval:   cfg.Ramp.Interval,
		RampStartRatio: cfg.Ramp.StartRatio,
		Pattern:        cfg.Haptic.PatternDurations(),
	})

	// The timers fire into the controller, which needs the scheduler, which
	// needs the timers. Firing only starts with Serve.
	d.timers = timer.New(ctx, func(ctx context.Context, payload alarm.Payload) {
		d.controller.Fire(ctx, payload)
	}, timer.WithPrecise(cfg.PreciseAlarms))

	d.scheduler = scheduler.New(records, d.timers)

	d.controller = trigger.NewController(trigger.Deps{
		Player:      player,
		Presenter:   devices.Presenter,
		Scheduler:   d.scheduler,
		Resolver:    content.NewResolver(catalog, scripture),
		Preferences: preferences.New(store),
		Records:     records,
	}, trigger.Config{
		Snooze:   cfg.Snooze,
		Greeting: cfg.Speech.Greeting,
	})

	d.server = grpc.NewServer(grpc.UnaryInterceptor(control.LoggingInterceptor(ctx)))
	control.RegisterControlServer(d.server, control.NewServer(d.controller, d.scheduler))

	return d, nil
}

// Serve arms every enabled alarm, serves the control API on lis and blocks
// until ctx is cancelled or serving fails. Active alerts are ended and the
// devices released before it returns.
func (d *Daemon) Serve(ctx context.Context, lis net.Listener) error {
	d.timers.Start()

	if !d.timers.CanSchedulePrecise() {
		logger.Warn(ctx, "Precise alarms are not permitted, alarms stay stored but will not fire")
	}

	if err := d.scheduler.RescheduleAll(ctx); err != nil {
		logger.WarnKV(ctx, "Some alarms could not be armed", "error", err)
	}

	logger.InfoKV(ctx, "Scripture alarm listening",
		"listen_address", lis.Addr().String(),
		"state_file", d.cfg.StateFile,
		"armed", len(d.scheduler.Pending()))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := d.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info(ctx, "Shutting down control API")
		d.server.GracefulStop()

		return nil
	})

	err := g.Wait()

	d.shutdown(context.WithoutCancel(ctx))

	return err
}

func (d *Daemon) shutdown(ctx context.Context) {
	d.controller.Close(ctx)
	d.timers.Stop()
	d.synth.Shutdown()

	if d.bible != nil {
		if err := d.bible.Close(); err != nil {
			logger.WarnKV(ctx, "Failed to close scripture database", "error", err)
		}
	}

	logger.Info(ctx, "Scripture alarm stopped")
}
