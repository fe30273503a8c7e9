package ai

import "errors"

var (
	// ErrUnknownTask is returned for task names outside Tasks.
	ErrUnknownTask = errors.New("unknown ai task")
	// ErrBusy is returned while another request is in flight.
	ErrBusy = errors.New("ai request already in progress")
	// ErrImageRequired is returned for OCR without image data.
	ErrImageRequired = errors.New("image is required")
	// ErrInvalidImage is returned when image data cannot be decoded.
	ErrInvalidImage = errors.New("invalid image data")
	// ErrImageAnalysis is returned when an OCR request fails.
	ErrImageAnalysis = errors.New("image analysis failed")
	// ErrGenerate is logged when the remote service fails.
	ErrGenerate = errors.New("ai generation failed")
)

// ImageAnalysisAlert is the message shown to the user for ErrImageAnalysis.
const ImageAnalysisAlert = "Image analysis failed."
