package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/benmeehan/merchant-intake/internal/form"
	"github.com/benmeehan/merchant-intake/internal/middlewares"
	"github.com/benmeehan/merchant-intake/internal/services"
	"github.com/benmeehan/merchant-intake/internal/utils"
	"github.com/benmeehan/merchant-intake/pkg/file"
	"github.com/benmeehan/merchant-intake/pkg/geocode"
	"github.com/benmeehan/merchant-intake/pkg/intake"
	"github.com/benmeehan/merchant-intake/pkg/location"
	"github.com/benmeehan/merchant-intake/pkg/mqtt"
	"github.com/benmeehan/merchant-intake/pkg/s3"
)

type registerOptions struct {
	name        string
	description string
	address     string
	lat         float64
	lng         float64
	images      []string
	out         string
	hasLocation bool
}

func registerCmd() *cobra.Command {
	var opts registerOptions

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a merchant from the command line",
		Long: `Fills the merchant registration form headlessly: the images are
validated and compressed, the address and location are synchronized through
the geocoder, and the result is published to the broker or written to --out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			opts.hasLocation = cmd.Flags().Changed("lat")
			return runRegister(cmd.Context(), cfg, opts, cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "Business name")
	cmd.Flags().StringVar(&opts.description, "description", "", "Business description")
	cmd.Flags().StringVar(&opts.address, "address", "", "Business address, geocoded to a location")
	cmd.Flags().Float64Var(&opts.lat, "lat", 0, "Latitude of the business, reverse geocoded to an address")
	cmd.Flags().Float64Var(&opts.lng, "lng", 0, "Longitude of the business")
	cmd.Flags().StringArrayVar(&opts.images, "image", nil, "Image file to upload (repeatable)")
	cmd.Flags().StringVar(&opts.out, "out", "", "Write the registration to this JSON file instead of publishing it")

	cmd.MarkFlagsRequiredTogether("lat", "lng")
	cmd.MarkFlagsMutuallyExclusive("address", "lat")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

// setup loads the configuration and the logger, applying the persistent flag overrides.
func setup(cmd *cobra.Command) (*utils.Config, zerolog.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := utils.LoadConfig(configPath, file.NewFileService())
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.Log.Format = format
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}
	return cfg, logger, nil
}

// summary is what register prints once the form settles.
type summary struct {
	Location  location.Location `json:"location"`
	Address   string            `json:"address"`
	Images    int               `json:"images"`
	Submitted bool              `json:"submitted"`
	Error     string            `json:"error,omitempty"`
}

func runRegister(ctx context.Context, cfg *utils.Config, opts registerOptions, out io.Writer, logger zerolog.Logger) error {
	fileClient := file.NewFileService()

	files, err := readImages(fileClient, opts.images)
	if err != nil {
		return err
	}

	handler, closeHandler, err := buildSubmitter(ctx, cfg, opts.out, fileClient, logger)
	if err != nil {
		return err
	}
	defer closeHandler()

	chain := middlewares.NewChainedHandler(handler,
		middlewares.NewLoggingMiddleware(logger),
		middlewares.NewValidationMiddleware(),
		middlewares.NewTimeoutMiddleware(cfg.Submission.Timeout),
	)

	geocoder := buildGeocoder(cfg, logger)
	initial := initialLocation(ctx, cfg, logger)
	pipeline := intake.NewPipeline(cfg.IntakeOptions(), logger)

	f := form.New(initial, pipeline, geocoder, chain, logger)
	defer f.Close()

	// Rejections are reported through the form state; Submit then refuses.
	_ = f.Ingest(ctx, files)

	switch {
	case opts.address != "":
		f.EditAddress(opts.address)
	case opts.hasLocation:
		f.PickLocation(location.Location{Latitude: opts.lat, Longitude: opts.lng})
	}
	f.Wait()

	submitErr := f.Submit(ctx, form.Fields{BusinessName: opts.name, Description: opts.description})

	s := f.Snapshot()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary{
		Location:  s.Location,
		Address:   s.Address,
		Images:    len(s.Images),
		Submitted: s.Submitted,
		Error:     s.Error,
	}); err != nil {
		return err
	}
	return submitErr
}

func readImages(fileClient file.FileOperations, paths []string) ([]intake.File, error) {
	files := make([]intake.File, 0, len(paths))
	for _, p := range paths {
		data, err := fileClient.ReadFileRaw(p)
		if err != nil {
			return nil, err
		}
		files = append(files, intake.NewFile(filepath.Base(p), data))
	}
	return files, nil
}

// buildGeocoder returns nil when no maps key is configured, which leaves the map unavailable.
func buildGeocoder(cfg *utils.Config, logger zerolog.Logger) geocode.Geocoder {
	google, err := geocode.NewGoogleGeocoder(cfg.Geocoding.MapsAPIKey,
		geocode.WithTimeout(cfg.Geocoding.Timeout),
		geocode.WithRegion(cfg.Geocoding.Region),
		geocode.WithLanguage(cfg.Geocoding.Language),
	)
	if err != nil {
		if errors.Is(err, geocode.ErrMissingAPIKey) {
			logger.Warn().Msg("No maps API key configured, running without map")
		} else {
			logger.Error().Err(err).Msg("Failed to create geocoder, running without map")
		}
		return nil
	}

	if cfg.Geocoding.CacheEnabled {
		return geocode.NewCachingGeocoder(google, cfg.Geocoding.CachePrecision)
	}
	return google
}

// initialLocation asks the GPS sensor for a fix when enabled, otherwise uses the configured default.
func initialLocation(ctx context.Context, cfg *utils.Config, logger zerolog.Logger) location.Location {
	fallback := cfg.FallbackLocation()

	var provider location.Provider
	if cfg.Location.SensorEnabled {
		provider = location.NewDeviceSensorProvider(cfg.Location.GPSDevicePort, cfg.Location.GPSDeviceBaudRate)
		defer provider.Close()
	}

	if cfg.Location.SensorTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Location.SensorTimeout)
		defer cancel()
	}

	loc, err := location.Resolve(ctx, provider, fallback)
	if err != nil {
		logger.Warn().Err(err).Str("fallback", fallback.String()).Msg("No sensor fix, using default location")
	}
	return loc
}

// buildSubmitter picks the file writer for dry runs and the broker otherwise.
// The returned func releases the connections it opened.
func buildSubmitter(ctx context.Context, cfg *utils.Config, out string, fileClient file.FileOperations,
	logger zerolog.Logger) (form.SubmitHandler, func(), error) {
	if out != "" {
		return services.NewFileSubmitter(out, fileClient, logger), func() {}, nil
	}

	// Generate a unique MQTT Client ID by appending a UUID
	clientID := cfg.Submission.ClientID + "-" + uuid.NewString()
	logger.Info().Str("client_id", clientID).Msg("Using MQTT Client ID")

	mqttClient := mqtt.NewMqttService(fileClient)
	err := mqttClient.Initialize(mqtt.Options{
		Broker:         cfg.Submission.Broker,
		ClientID:       clientID,
		Username:       cfg.Submission.Username,
		Password:       cfg.Submission.Password,
		CACertificate:  cfg.Submission.CACertificate,
		ConnectTimeout: cfg.Submission.PublishTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize MQTT connection: %w", err)
	}
	disconnect := func() { mqttClient.Disconnect(250) }

	var storage s3.ObjectStorageClient
	if cfg.Storage.Enabled {
		objectStorage := s3.NewObjectStorage()
		if err := objectStorage.Connect(ctx, cfg.Storage.Endpoint, cfg.Storage.AccessKeyID,
			cfg.Storage.SecretAccessKey, cfg.Storage.UseSSL); err != nil {
			disconnect()
			return nil, nil, fmt.Errorf("failed to connect to object storage: %w", err)
		}
		storage = objectStorage
	}

	return services.NewRegistrationService(
		cfg.Submission.Topic,
		cfg.Submission.QOS,
		cfg.Submission.PublishTimeout,
		mqttClient,
		storage,
		cfg.Storage.Bucket,
		cfg.Storage.PresignExpiry,
		logger,
	), disconnect, nil
}
