package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/benmeehan/merchant-intake/internal/constants"
	"github.com/benmeehan/merchant-intake/internal/models"
	"github.com/benmeehan/merchant-intake/pkg/geocode"
	"github.com/benmeehan/merchant-intake/pkg/intake"
	"github.com/benmeehan/merchant-intake/pkg/location"
)

// SubmitHandler persists a completed form.
type SubmitHandler interface {
	Submit(ctx context.Context, submission models.MerchantSubmission) error
}

// SubmitFunc adapts a function to SubmitHandler.
type SubmitFunc func(ctx context.Context, submission models.MerchantSubmission) error

// Submit calls f.
func (f SubmitFunc) Submit(ctx context.Context, submission models.MerchantSubmission) error {
	return f(ctx, submission)
}

// Intake turns raw file batches into encoded images.
type Intake interface {
	Options() intake.Options
	Validate(files []intake.File) error
	Process(ctx context.Context, files []intake.File) ([]string, error)
}

// Fields are the free-text inputs collected at submit time.
type Fields struct {
	BusinessName string
	Description  string
}

// Form is the merchant registration form. All methods are safe for concurrent use.
type Form struct {
	// Dependencies
	pipeline Intake
	geocoder geocode.Geocoder // nil when no map provider is configured
	handler  SubmitHandler
	logger   zerolog.Logger

	// Internal state management
	mu     sync.Mutex
	state  State
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Form centered on initial. A nil geocoder leaves the map unavailable
// and the address/location pair unsynchronized.
func New(initial location.Location, pipeline Intake, geocoder geocode.Geocoder,
	handler SubmitHandler, logger zerolog.Logger) *Form {
	ctx, cancel := context.WithCancel(context.Background())
	return &Form{
		pipeline: pipeline,
		geocoder: geocoder,
		handler:  handler,
		logger:   logger,
		state: State{
			Location:     initial,
			MapAvailable: geocoder != nil,
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Snapshot returns a copy of the current state.
func (f *Form) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.clone()
}

// CanSubmit mirrors the submit control: enough images, nothing compressing, nothing pending.
func (f *Form) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.state
	return !s.closed && !s.Processing && !s.Submitting && len(s.Images) >= constants.MinImages
}

func (f *Form) dispatch(a Action) State {
	f.mu.Lock()
	f.state = Reduce(f.state, a)
	s := f.state
	f.mu.Unlock()

	f.logger.Debug().Str("transition", a.Kind()).Int("images", len(s.Images)).Bool("processing", s.Processing).Msg("Form state changed")
	return s
}

// track runs fn in the background unless the form is closed.
func (f *Form) track(fn func()) {
	f.mu.Lock()
	if f.state.closed {
		f.mu.Unlock()
		return
	}
	f.wg.Add(1)
	f.mu.Unlock()

	go func() {
		defer f.wg.Done()
		fn()
	}()
}

// Ingest runs one file-input batch through the intake pipeline and appends the
// results. It blocks until the batch finishes; other methods stay usable meanwhile.
func (f *Form) Ingest(ctx context.Context, files []intake.File) error {
	if len(files) == 0 {
		return nil
	}
	if f.Snapshot().closed {
		return ErrClosed
	}

	f.dispatch(FilesSelected{Names: intake.Names(files)})

	if err := f.pipeline.Validate(files); err != nil {
		f.logger.Warn().Err(err).Int("files", len(files)).Msg("Image batch rejected before compression")
		f.dispatch(BatchRejected{Message: f.messageFor(err)})
		return err
	}

	f.dispatch(BatchStarted{})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(f.ctx, cancel)
	defer stop()

	images, err := f.pipeline.Process(ctx, files)
	if err != nil {
		f.logger.Warn().Err(err).Str("kind", intake.KindOf(err).String()).Msg("Image batch rejected")
		f.dispatch(BatchFailed{Message: f.messageFor(err)})
		return err
	}

	s := f.dispatch(BatchCompleted{Images: images})
	f.logger.Info().Int("added", len(images)).Int("total", len(s.Images)).Msg("Images added")
	return nil
}

func (f *Form) messageFor(err error) string {
	var ie *intake.Error
	if !errors.As(err, &ie) {
		return constants.MsgCompressionFailed
	}

	opts := f.pipeline.Options()
	switch ie.Kind {
	case intake.KindFileTooLarge:
		return fmt.Sprintf(constants.MsgFilesTooLarge, humanize.IBytes(uint64(opts.MaxFileSize)), strings.Join(ie.Files, ", "))
	case intake.KindTooLargeAfterCompression:
		return fmt.Sprintf(constants.MsgTooLargeAfterCompression, strings.Join(ie.Files, ", "), humanize.IBytes(uint64(opts.MaxEncodedSize)))
	default:
		return constants.MsgCompressionFailed
	}
}

// PickLocation moves the pin to loc and looks up its address in the background.
func (f *Form) PickLocation(loc location.Location) {
	s := f.dispatch(LocationPicked{Location: loc})
	if f.geocoder == nil || s.closed {
		return
	}

	seq := s.reverseSeq
	f.track(func() {
		address, err := f.geocoder.ReverseGeocode(f.ctx, loc)
		if err != nil {
			f.logger.Warn().Err(err).
				Str("error_type", geocode.TypeOf(err).String()).
				Str("location", loc.String()).
				Msg("Reverse geocoding failed")
			return
		}
		f.dispatch(AddressResolved{Seq: seq, Address: address})
	})
}

// EditAddress stores the typed address and looks up its coordinates in the background.
func (f *Form) EditAddress(address string) {
	s := f.dispatch(AddressEdited{Address: address})
	if f.geocoder == nil || s.closed || strings.TrimSpace(address) == "" {
		return
	}

	seq := s.forwardSeq
	f.track(func() {
		loc, err := f.geocoder.ForwardGeocode(f.ctx, address)
		if err != nil {
			f.logger.Warn().Err(err).
				Str("error_type", geocode.TypeOf(err).String()).
				Str("address", address).
				Msg("Forward geocoding failed")
			return
		}
		f.dispatch(LocationResolved{Seq: seq, Location: loc})
	})
}

// Submit validates the form and hands it to the submission handler.
func (f *Form) Submit(ctx context.Context, fields Fields) error {
	submission, err := f.beginSubmit(fields)
	if err != nil {
		return err
	}

	f.logger.Info().
		Str("business_name", submission.BusinessName).
		Int("images", len(submission.Images)).
		Msg("Submitting merchant registration")

	if err := f.callHandler(ctx, submission); err != nil {
		msg := err.Error()
		if msg == "" {
			msg = constants.MsgSubmitFailed
		}
		f.logger.Error().Err(err).Msg("Merchant registration failed")
		f.dispatch(SubmitFailed{Message: msg})
		return fmt.Errorf("%w: %w", ErrSubmission, err)
	}

	f.dispatch(SubmitSucceeded{})
	f.logger.Info().Str("business_name", submission.BusinessName).Msg("Merchant registered")
	return nil
}

// beginSubmit checks the gate and flips Submitting in one step.
func (f *Form) beginSubmit(fields Fields) (models.MerchantSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.state
	if s.closed {
		return models.MerchantSubmission{}, ErrClosed
	}

	if len(s.Images) < constants.MinImages {
		f.state = Reduce(f.state, SubmitRejected{Message: constants.MsgInsufficientImages})
		err := fmt.Errorf("%w: have %d, need %d", ErrInsufficientImages, len(s.Images), constants.MinImages)
		f.logger.Warn().Err(err).Msg("Submission rejected")
		return models.MerchantSubmission{}, err
	}
	if s.Processing || s.Submitting {
		return models.MerchantSubmission{}, ErrBusy
	}

	f.state = Reduce(f.state, SubmitStarted{})
	return models.MerchantSubmission{
		BusinessName: strings.TrimSpace(fields.BusinessName),
		Description:  strings.TrimSpace(fields.Description),
		Address:      s.Address,
		Location:     s.Location.JSON(),
		Images:       append([]string(nil), s.Images...),
	}, nil
}

// callHandler turns a handler panic into an error so Submitting is always reset.
func (f *Form) callHandler(ctx context.Context, submission models.MerchantSubmission) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("submission handler panicked: %v", r)
		}
	}()
	return f.handler.Submit(ctx, submission)
}

// Wait blocks until background lookups started so far have finished.
// It must not race with PickLocation or EditAddress.
func (f *Form) Wait() {
	f.wg.Wait()
}

// Close discards every late result, cancels in-flight work and waits for lookups to return.
func (f *Form) Close() {
	f.mu.Lock()
	if f.state.closed {
		f.mu.Unlock()
		return
	}
	f.state = Reduce(f.state, Closed{})
	f.mu.Unlock()

	f.cancel()
	f.wg.Wait()
	f.logger.Debug().Msg("Form closed")
}
