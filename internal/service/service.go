// Package service exposes the synthesis pipeline over the bus as a
// request/reply surface.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/aurislabs/auris-core/internal/bus"
	"github.com/aurislabs/auris-core/internal/history"
	"github.com/aurislabs/auris-core/internal/params"
	"github.com/aurislabs/auris-core/internal/pipeline"
	"github.com/aurislabs/auris-core/internal/protocol"
	"github.com/aurislabs/auris-core/internal/speaker"
)

type Service struct {
	bus      *bus.Client
	pipe     *pipeline.Pipeline
	speakers *speaker.Store
	styles   *speaker.StyleStore
	journal  *history.Store
	subs     []*nats.Subscription
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	logger   *slog.Logger
}

func New(parent context.Context, busClient *bus.Client, pipe *pipeline.Pipeline, speakers *speaker.Store, styles *speaker.StyleStore, journal *history.Store, log *slog.Logger) *Service {
	ctx, cancel := context.WithCancel(parent)
	return &Service{
		bus:      busClient,
		pipe:     pipe,
		speakers: speakers,
		styles:   styles,
		journal:  journal,
		ctx:      ctx,
		cancel:   cancel,
		logger:   log.With(slog.String("component", "speech-service")),
	}
}

func (s *Service) Start() error {
	conn := s.bus.Conn()
	for subject, handler := range map[string]nats.MsgHandler{
		protocol.SubjectSynthesizeText: s.handleText,
		protocol.SubjectSynthesizeSSML: s.handleSSML,
		protocol.SubjectSpeakerList:    s.handleSpeakerList,
	} {
		sub, err := conn.Subscribe(subject, handler)
		if err != nil {
			return err
		}
		s.subs = append(s.subs, sub)
	}
	return nil
}

func (s *Service) Close() {
	s.cancel()
	for _, sub := range s.subs {
		_ = sub.Drain()
	}
	s.wg.Wait()
}

func (s *Service) Healthy() bool { return len(s.subs) > 0 }

func (s *Service) handleText(msg *nats.Msg) {
	var req protocol.TextRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.logger.Warn("failed to decode text request", slogError(err))
		s.reply(msg, protocol.SynthesisReply{Error: "malformed request", Timestamp: time.Now().UTC()})
		return
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		start := time.Now()

		audio, err := s.pipe.SynthesizeFromTextNamed(s.ctx, req.Text, req.Speaker, textOverrides(req))
		s.journalRequest(history.Record{
			RequestID:  req.RequestID,
			Entry:      "text",
			Speaker:    req.Speaker,
			Style:      req.Style,
			Format:     string(audio.Format),
			SampleRate: audio.SampleRate,
			TextLength: len(req.Text),
			DurationMS: time.Since(start).Milliseconds(),
		}, err)
		s.reply(msg, replyFor(req.RequestID, audio, err))
	}()
}

func (s *Service) handleSSML(msg *nats.Msg) {
	var req protocol.SSMLRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.logger.Warn("failed to decode ssml request", slogError(err))
		s.reply(msg, protocol.SynthesisReply{Error: "malformed request", Timestamp: time.Now().UTC()})
		return
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		start := time.Now()

		audio, err := s.pipe.SynthesizeFromSSML(s.ctx, req.Markup, ssmlOverrides(req))
		s.journalRequest(history.Record{
			RequestID:  req.RequestID,
			Entry:      "ssml",
			Format:     string(audio.Format),
			SampleRate: audio.SampleRate,
			TextLength: len(req.Markup),
			DurationMS: time.Since(start).Milliseconds(),
		}, err)
		s.reply(msg, replyFor(req.RequestID, audio, err))
	}()
}

func (s *Service) handleSpeakerList(msg *nats.Msg) {
	var reply protocol.SpeakerListReply
	for _, spk := range s.speakers.List() {
		reply.Speakers = append(reply.Speakers, protocol.SpeakerInfo{
			Name:        spk.Name,
			Gender:      spk.Gender,
			Description: spk.Description,
			DisplayName: spk.DisplayName(),
		})
	}
	reply.Styles = s.styles.List()

	data, err := json.Marshal(reply)
	if err != nil {
		s.logger.Warn("failed to marshal speaker list", slogError(err))
		return
	}
	if err := msg.Respond(data); err != nil {
		s.logger.Warn("failed to respond to speaker list", slogError(err))
	}
}

func (s *Service) journalRequest(rec history.Record, err error) {
	if err != nil {
		rec.Status = "error"
		rec.Error = err.Error()
	} else {
		rec.Status = "ok"
	}
	if jerr := s.journal.Append(s.ctx, rec); jerr != nil {
		s.logger.Warn("failed to journal request", slogError(jerr))
	}
}

func (s *Service) reply(msg *nats.Msg, reply protocol.SynthesisReply) {
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(reply)
	if err != nil {
		s.logger.Warn("failed to marshal reply", slogError(err))
		return
	}
	if err := msg.Respond(data); err != nil {
		s.logger.Warn("failed to respond", slogError(err))
	}
}

func replyFor(requestID string, audio pipeline.Audio, err error) protocol.SynthesisReply {
	reply := protocol.SynthesisReply{RequestID: requestID, Timestamp: time.Now().UTC()}
	if err != nil {
		reply.Error = err.Error()
		return reply
	}
	reply.SampleRate = audio.SampleRate
	reply.Format = string(audio.Format)
	reply.Audio = audio.Data
	return reply
}

func textOverrides(req protocol.TextRequest) params.Overrides {
	ov := params.NewOverrides()
	ov.Style = req.Style
	if req.Seed != 0 {
		ov.Seed = req.Seed
	}
	ov.Temperature = req.Temperature
	ov.TopP = req.TopP
	ov.TopK = req.TopK
	ov.Pitch = req.Pitch
	ov.SpeedRate = req.SpeedRate
	ov.VolumeGainDB = req.VolumeGainDB
	ov.Normalize = req.Normalize
	ov.HeadroomDB = req.HeadroomDB
	ov.Denoise = req.Denoise
	ov.Enhance = req.Enhance
	ov.Format = req.Format
	ov.Codec = req.Codec
	ov.Bitrate = req.Bitrate
	ov.BatchSize = req.BatchSize
	ov.SplitThreshold = req.SplitThreshold
	ov.EOS = req.EOS
	return ov
}

func ssmlOverrides(req protocol.SSMLRequest) params.Overrides {
	ov := params.NewOverrides()
	ov.Pitch = req.Pitch
	ov.SpeedRate = req.SpeedRate
	ov.VolumeGainDB = req.VolumeGainDB
	ov.Normalize = req.Normalize
	ov.HeadroomDB = req.HeadroomDB
	ov.Denoise = req.Denoise
	ov.Enhance = req.Enhance
	ov.Format = req.Format
	ov.Codec = req.Codec
	ov.Bitrate = req.Bitrate
	ov.BatchSize = req.BatchSize
	ov.SplitThreshold = req.SplitThreshold
	ov.EOS = req.EOS
	return ov
}

func slogError(err error) slog.Attr {
	return slog.String("error", err.Error())
}
