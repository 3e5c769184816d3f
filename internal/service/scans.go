package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScanImage analyzes a base64-encoded menu photo and persists the result
// under sessionID.
func (s *Service) ScanImage(
	ctx context.Context,
	sessionID string,
	imageBase64 string,
	targetLanguage string,
) (*Scan, error) {
	if imageBase64 == "" {
		return nil, fmt.Errorf("%w: missing image", ErrInvalidInput)
	}
	if len(imageBase64) > maxImageBytes {
		return nil, fmt.Errorf("%w: image too large", ErrInvalidInput)
	}

	result, err := s.analyzer.Analyze(ctx, imageBase64, targetLanguage)
	if err != nil {
		s.log.Error().Err(err).Str("sid", sessionID).Msg("vision analysis failed")
		return nil, fmt.Errorf("%w: %v", ErrScanFailed, err)
	}

	scan := &Scan{
		ID:             uuid.NewString(),
		SessionID:      sessionID,
		TargetLanguage: targetLanguage,
		SourceText:     result.SourceText,
		Items:          result.Items,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.scans.InsertScan(scan); err != nil {
		return nil, fmt.Errorf("%w: failed to store scan: %v", ErrInternal, err)
	}

	s.log.Info().Str("sid", sessionID).Str("scan", scan.ID).
		Int("items", len(scan.Items)).Msg("scan stored")
	return scan, nil
}

// History returns the session's scans, newest first.
func (s *Service) History(sessionID string) ([]*Scan, error) {
	scans, err := s.scans.ListScans(sessionID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list scans: %v", ErrInternal, err)
	}
	return scans, nil
}

// DeleteScan removes a scan the session owns.
func (s *Service) DeleteScan(sessionID string, scanID string) error {
	scan, err := s.scans.GetScan(scanID)
	if err != nil {
		return fmt.Errorf("%w: failed to load scan: %v", ErrInternal, err)
	}
	if scan == nil {
		return ErrScanNotFound
	}
	if scan.SessionID != sessionID {
		return fmt.Errorf("%w: scan belongs to another session", ErrNotAuthorized)
	}

	deleted, err := s.scans.DeleteScan(scanID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete scan: %v", ErrInternal, err)
	}
	if !deleted {
		return ErrScanNotFound
	}
	return nil
}
