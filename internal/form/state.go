package form

import (
	"slices"

	"github.com/benmeehan/merchant-intake/pkg/location"
)

// State is everything the form shows. It only changes through Reduce.
type State struct {
	Location     location.Location
	Address      string
	Images       []string // data URLs in upload order
	Selection    []string // file names held by the file input
	Processing   bool     // an upload batch is being compressed
	Submitting   bool     // the submission handler is pending
	Submitted    bool     // the last submission succeeded
	Error        string   // single user-visible message, empty when none
	MapAvailable bool

	batches    int    // upload batches in flight
	reverseSeq uint64 // latest map pick, for discarding stale reverse lookups
	forwardSeq uint64 // latest address edit, for discarding stale forward lookups
	closed     bool
}

// Closed reports whether the form was torn down.
func (s State) Closed() bool {
	return s.closed
}

func (s State) clone() State {
	s.Images = slices.Clone(s.Images)
	s.Selection = slices.Clone(s.Selection)
	return s
}

// Action is a state transition.
type Action interface {
	Kind() string
}

type (
	// LocationPicked moves the pin; the address follows if the reverse lookup succeeds.
	LocationPicked struct{ Location location.Location }
	// AddressEdited stores typed text; the pin follows if the forward lookup succeeds.
	AddressEdited struct{ Address string }
	// AddressResolved carries a reverse lookup result for map pick Seq.
	AddressResolved struct {
		Seq     uint64
		Address string
	}
	// LocationResolved carries a forward lookup result for address edit Seq.
	LocationResolved struct {
		Seq      uint64
		Location location.Location
	}

	// FilesSelected records what the file input holds.
	FilesSelected struct{ Names []string }
	// BatchRejected rejects a batch before compression starts.
	BatchRejected struct{ Message string }
	// BatchStarted marks a batch as compressing.
	BatchStarted struct{}
	// BatchFailed ends a batch without appending anything.
	BatchFailed struct{ Message string }
	// BatchCompleted appends a batch's images in one step.
	BatchCompleted struct{ Images []string }

	// SubmitRejected refuses a submission locally.
	SubmitRejected struct{ Message string }
	// SubmitStarted marks the handler as pending.
	SubmitStarted struct{}
	// SubmitFailed records the handler's failure.
	SubmitFailed struct{ Message string }
	// SubmitSucceeded records a completed submission.
	SubmitSucceeded struct{}

	// Closed tears the form down; every later transition is ignored.
	Closed struct{}
)

func (LocationPicked) Kind() string   { return "location_picked" }
func (AddressEdited) Kind() string    { return "address_edited" }
func (AddressResolved) Kind() string  { return "address_resolved" }
func (LocationResolved) Kind() string { return "location_resolved" }
func (FilesSelected) Kind() string    { return "files_selected" }
func (BatchRejected) Kind() string    { return "batch_rejected" }
func (BatchStarted) Kind() string     { return "batch_started" }
func (BatchFailed) Kind() string      { return "batch_failed" }
func (BatchCompleted) Kind() string   { return "batch_completed" }
func (SubmitRejected) Kind() string   { return "submit_rejected" }
func (SubmitStarted) Kind() string    { return "submit_started" }
func (SubmitFailed) Kind() string     { return "submit_failed" }
func (SubmitSucceeded) Kind() string  { return "submit_succeeded" }
func (Closed) Kind() string           { return "closed" }

// Reduce applies a to s and returns the next state. s is not modified.
//
// Lookup results only apply while they answer the latest request of their
// direction; overlapping upload batches append in completion order.
func Reduce(s State, a Action) State {
	if s.closed {
		return s
	}
	s = s.clone()

	switch a := a.(type) {
	case LocationPicked:
		s.Location = a.Location
		s.reverseSeq++
	case AddressEdited:
		s.Address = a.Address
		s.forwardSeq++
	case AddressResolved:
		if a.Seq == s.reverseSeq {
			s.Address = a.Address
		}
	case LocationResolved:
		if a.Seq == s.forwardSeq {
			s.Location = a.Location
		}

	case FilesSelected:
		s.Selection = slices.Clone(a.Names)
	case BatchRejected:
		s.Error = a.Message
		s.Selection = nil
	case BatchStarted:
		s.batches++
		s.Processing = true
		s.Error = ""
	case BatchFailed:
		s.finishBatch()
		s.Error = a.Message
		s.Selection = nil
	case BatchCompleted:
		s.finishBatch()
		s.Images = append(s.Images, a.Images...)

	case SubmitRejected:
		s.Error = a.Message
	case SubmitStarted:
		s.Submitting = true
		s.Submitted = false
		s.Error = ""
	case SubmitFailed:
		s.Submitting = false
		s.Error = a.Message
	case SubmitSucceeded:
		s.Submitting = false
		s.Submitted = true
		s.Error = ""

	case Closed:
		s.closed = true
	}
	return s
}

func (s *State) finishBatch() {
	if s.batches > 0 {
		s.batches--
	}
	s.Processing = s.batches > 0
}
