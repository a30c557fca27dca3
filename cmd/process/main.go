// Command process runs the recognition and extraction pipeline on a local
// file and prints the result. Useful for trying a document against the
// strategies without the server or a database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"loaddocs/internal/config"
	"loaddocs/internal/decision"
	"loaddocs/internal/domain"
	"loaddocs/internal/extract"
	"loaddocs/internal/ocr"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		filePath  = flag.String("file", "", "path to the document file (required)")
		typeName  = flag.String("type", "", "document type: LICENSE, INSURANCE, AGREEMENT, RATE_CON, DELIVERY, INVOICE, LUMPER (required)")
		driverArg = flag.String("driver", "", "driver UUID for a dry-run decision (optional)")
		loadArg   = flag.String("load", "", "load UUID for a dry-run decision (optional)")
		textMode  = flag.Bool("text", false, "treat the file as already-recognized text and skip OCR")
	)
	flag.Parse()

	if *filePath == "" || *typeName == "" {
		flag.Usage()
		os.Exit(2)
	}

	docType, ok := domain.ParseDocumentType(strings.ToUpper(*typeName))
	if !ok {
		return fmt.Errorf("unknown document type %q", *typeName)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fileBytes, err := os.ReadFile(*filePath)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	text, err := recognizeText(cfg, *filePath, fileBytes, *textMode)
	if err != nil {
		return err
	}

	strategy, err := extract.NewRegistry().Get(docType)
	if err != nil {
		return err
	}
	result := strategy.Parse(text)

	output := map[string]interface{}{
		"doc_type":    docType,
		"confidence":  result.Confidence,
		"tier":        extract.TierFor(result.Confidence),
		"verified":    result.Verified,
		"needs_retry": extract.NeedsRetry(result.Confidence),
		"data":        result.Data,
		"details":     result.Details,
	}

	if *driverArg != "" || *loadArg != "" {
		outcome, err := dryRunDecision(docType, result, *driverArg, *loadArg)
		if err != nil {
			return err
		}
		output["decision"] = outcome
	}

	encoded, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}

func recognizeText(cfg *config.Config, filePath string, fileBytes []byte, textMode bool) (string, error) {
	if textMode {
		return string(fileBytes), nil
	}

	sniffLen := len(fileBytes)
	if sniffLen > 512 {
		sniffLen = 512
	}
	limiter := ocr.NewLimiter(1)
	primary := ocr.NewClient(&cfg.OCR.Primary, &cfg.OCR)
	var secondary ocr.Recognizer
	if cfg.OCR.Fallback.Configured() {
		secondary = ocr.NewClient(&cfg.OCR.Fallback, &cfg.OCR)
	}
	recognizer := ocr.NewFallbackRecognizer(primary, secondary, limiter)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := recognizer.Recognize(ctx, ocr.SubmitInput{
		FileBytes: fileBytes,
		Filename:  filepath.Base(filePath),
		MimeType:  http.DetectContentType(fileBytes[:sniffLen]),
	})
	if err != nil {
		return "", fmt.Errorf("recognition: %w", err)
	}
	log.Printf("recognized %d pages, average confidence %.3f (%s)",
		result.PageCount, result.AverageConfidence, result.ExtractionMethod)
	return result.FullText, nil
}

// dryRunDecision runs the decision engine against empty driver/load records.
// Nothing is persisted; the output shows which flags this document would set.
func dryRunDecision(docType domain.DocumentType, result extract.ParsingResult, driverArg, loadArg string) (*decision.Outcome, error) {
	input := decision.Input{
		DocType:    docType,
		Data:       result.Data,
		Confidence: result.Confidence,
		Verified:   result.Verified,
		Today:      time.Now().UTC(),
	}
	if driverArg != "" {
		driverID, err := uuid.Parse(driverArg)
		if err != nil {
			return nil, fmt.Errorf("invalid driver id: %w", err)
		}
		input.Driver = &domain.Driver{ID: driverID}
	}
	if loadArg != "" {
		loadID, err := uuid.Parse(loadArg)
		if err != nil {
			return nil, fmt.Errorf("invalid load id: %w", err)
		}
		input.Load = &domain.Load{ID: loadID}
	}
	return decision.NewEngine().Decide(input)
}
