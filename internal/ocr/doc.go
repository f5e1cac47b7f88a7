// Package ocr recognizes text on plan images using Tesseract.
//
// The blueprint pipeline only needs raw text: dimension labels are parsed out
// of it by the dimension package. Recognition goes through the Recognizer
// interface so the pipeline can run with a fake in tests and without
// Tesseract at all in default builds.
//
// # Build Tags
//
// Tesseract support is compiled in only with the "ocr" build tag:
//
//	go build -tags ocr ./...
//
// Without the tag, NewTesseract returns ErrOCRNotEnabled and analyses proceed
// with no dimension samples, which makes the scale estimator fall back to its
// default factor.
//
// # Prerequisites
//
// With the tag, Tesseract and its language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng libtesseract-dev
//   - macOS: brew install tesseract
//
// # Cancellation
//
// Tesseract calls cannot be interrupted. Recognize returns as soon as the
// context is done; the engine call finishes in the background and its result
// is discarded.
package ocr
