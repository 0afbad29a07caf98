// Command tessera-lambda is the serverless front door: an AWS Lambda
// handler wrapping the same config/orchestrator path the CLI uses, for
// stateless, on-demand solves triggered by an event instead of a flag
// set. It plays the role the teacher codebase's own lambda handler
// plays for a bot turn — parse the event, run the engine, return a
// response — generalized from a NATS-published Scrabble move to a
// JSON SolveReport, with pieces read inline or fetched from S3 instead
// of assembled from local game state.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/edgepuzzle/tessera/archive"
	"github.com/edgepuzzle/tessera/board"
	"github.com/edgepuzzle/tessera/canon"
	"github.com/edgepuzzle/tessera/orchestrator"
	"github.com/edgepuzzle/tessera/piecesfile"
	"github.com/edgepuzzle/tessera/rottable"
	"github.com/edgepuzzle/tessera/solve"
)

// quitAfterFirst wraps another sink and asks the search to stop the
// moment the first solution arrives, the request's quitOnFirst field.
type quitAfterFirst struct {
	next solve.Sink
}

func (q *quitAfterFirst) Solution(b *board.Board, count int64) bool {
	q.next.Solution(b, count)
	return false
}

var s3Client *s3.Client

// SolveRequest is the Lambda event shape: board dimensions plus either
// an inline pieces-file body or a reference to one in S3. Exactly one
// of Pieces/S3Bucket+S3Key must be set.
type SolveRequest struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	BoardType    int    `json:"boardType"`
	MacroCeiling int    `json:"macroCeiling"`
	MaxMemMB     int    `json:"maxMemMB"`
	Threaded     bool   `json:"threaded"`
	Randomize    bool   `json:"randomize"`
	QuitOnFirst  bool   `json:"quitOnFirst"`
	ArchiveDSN   string `json:"archiveDSN"`

	Pieces   string `json:"pieces,omitempty"`   // inline pieces-file text
	S3Bucket string `json:"s3Bucket,omitempty"` // alternative: fetch from S3
	S3Key    string `json:"s3Key,omitempty"`
}

// SolveResponse mirrors orchestrator.Report in a JSON-friendly shape;
// the Lambda caller has no use for the rottable.Table handle a local
// caller's validation harness wants, so it is dropped here.
type SolveResponse struct {
	SolutionCount int64  `json:"solutionCount"`
	BoardW        int    `json:"boardW"`
	BoardH        int    `json:"boardH"`
	Levels        int    `json:"levels"`
	Threaded      bool   `json:"threaded"`
	Error         string `json:"error,omitempty"`
}

func loadPieces(ctx context.Context, req SolveRequest) ([]canon.Piece, error) {
	if req.Pieces != "" {
		return piecesfile.Parse(bytes.NewReader([]byte(req.Pieces)))
	}
	if req.S3Bucket == "" || req.S3Key == "" {
		return nil, fmt.Errorf("request carries neither inline pieces nor an s3 reference")
	}
	var body io.ReadCloser
	err := retry.Do(func() error {
		out, err := s3Client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: &req.S3Bucket,
			Key:    &req.S3Key,
		})
		if err != nil {
			return err
		}
		body = out.Body
		return nil
	}, retry.Context(ctx), retry.Attempts(3))
	if err != nil {
		return nil, fmt.Errorf("fetch s3://%s/%s: %w", req.S3Bucket, req.S3Key, err)
	}
	defer body.Close()
	return piecesfile.Parse(body)
}

// HandleRequest runs one solve per invocation: load pieces (inline or
// from S3), build the orchestrator options from the event, and collapse
// the run down to a JSON-serializable report.
func HandleRequest(ctx context.Context, req SolveRequest) (SolveResponse, error) {
	logger := log.With().Int("width", req.Width).Int("height", req.Height).Logger()

	pieces, err := loadPieces(ctx, req)
	if err != nil {
		logger.Err(err).Msg("lambda-load-failed")
		return SolveResponse{Error: err.Error()}, err
	}
	if err := piecesfile.Validate(pieces); err != nil {
		logger.Err(err).Msg("lambda-over-capacity")
		return SolveResponse{Error: err.Error()}, err
	}

	border, ok := board.BorderSetFromNumpad(req.BoardType)
	if !ok {
		border = board.BorderNormal
	}

	var fanout archive.Fanout
	var ar *archive.Archive
	if req.ArchiveDSN != "" {
		ar, err = archive.Open(req.ArchiveDSN, logger)
		if err != nil {
			return SolveResponse{Error: err.Error()}, err
		}
		defer ar.Close()
		fanout.Sinks = append(fanout.Sinks, ar)
	}

	opts := orchestrator.Options{
		Width:        req.Width,
		Height:       req.Height,
		Border:       border,
		Strategy:     rottable.StrategyAuto,
		Threaded:     req.Threaded,
		Randomize:    req.Randomize,
		MacroCeiling: req.MacroCeiling,
		MaxMemMB:     req.MaxMemMB,
	}

	var sink solve.Sink = fanout
	if req.QuitOnFirst {
		sink = &quitAfterFirst{next: sink}
	}

	start := time.Now()
	report, err := orchestrator.Run(ctx, pieces, opts, sink)
	if err != nil {
		logger.Err(err).Msg("lambda-solve-failed")
		return SolveResponse{Error: err.Error()}, err
	}
	logger.Info().Int64("solutions", report.SolutionCount).
		Dur("elapsed", time.Since(start)).Msg("lambda-solve-complete")

	return SolveResponse{
		SolutionCount: report.SolutionCount,
		BoardW:        report.BoardW,
		BoardH:        report.BoardH,
		Levels:        len(report.Levels),
		Threaded:      report.Threaded,
	}, nil
}

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	awsCfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("load-aws-config-failed")
	}
	s3Client = s3.NewFromConfig(awsCfg)

	lambda.Start(HandleRequest)
}
