package constants

// MinImages is the smallest image count that can be submitted.
const MinImages = 3

// User-facing messages. Only one is shown at a time.
const (
	// MsgFilesTooLarge takes the ceiling and the comma separated file names.
	MsgFilesTooLarge = "The following files exceed the %s limit: %s"
	// MsgTooLargeAfterCompression takes the comma separated file names and the ceiling.
	MsgTooLargeAfterCompression = "Some images are still too large after compression (%s). Please choose images that compress below %s."
	// MsgCompressionFailed is shown for decode/encode failures.
	MsgCompressionFailed = "Failed to process images. Please try again."
	// MsgInsufficientImages is shown when submitting with fewer than MinImages images.
	MsgInsufficientImages = "Please upload at least 3 images"
	// MsgMissingField names a required field left empty.
	MsgMissingField = "Please fill in the %s"
	// MsgSubmitFailed is shown when the handler fails without a message.
	MsgSubmitFailed = "Failed to register merchant. Please try again."
)
