package main

// Importing the tesseract provider installs it as the default OCR engine.
// Recognition only runs when OCR_ENABLED is set, but the import makes the
// binary link against libtesseract either way.
import (
	_ "github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ocr/tesseract"
)
