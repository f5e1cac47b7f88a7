// Package dimension extracts numeric dimension labels from plan images.
//
// Plans are lettered with bare metre values ("4.5", "3.20"). The extractor
// runs text recognition restricted to digits and separators, scans the text
// for decimal numbers and keeps every value above a minimum, in order of
// appearance and with duplicates.
//
// Recognition can fail for reasons outside the pipeline's control: Tesseract
// missing, a timeout, a binary built without the ocr tag. That outcome is an
// explicit Unavailable value, never an error, so an analysis degrades to the
// fallback scale instead of aborting.
package dimension
