package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aurislabs/auris-core/internal/bus"
	"github.com/aurislabs/auris-core/internal/config"
	"github.com/aurislabs/auris-core/internal/protocol"
)

var version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "expected 'say', 'speakers' or 'version'")
		os.Exit(2)
	}

	switch os.Args[1] {
	case "say":
		if err := runSay(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "speakers":
		if err := runSpeakers(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		os.Exit(2)
	}
}

func connect(ctx context.Context, server string) (*bus.Client, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return bus.Connect(ctx, config.BusConfig{
		Servers:        []string{server},
		ConnectTimeout: 2000,
	}, logger)
}

func runSay(args []string) error {
	cmd := flag.NewFlagSet("say", flag.ExitOnError)
	server := cmd.String("server", "nats://localhost:4222", "NATS server URL")
	text := cmd.String("text", "", "Text to synthesize")
	ssmlPath := cmd.String("ssml", "", "Path to an SSML file to synthesize instead of -text")
	spk := cmd.String("speaker", "", "Speaker name or seed")
	style := cmd.String("style", "", "Style name")
	seed := cmd.Int64("seed", 0, "Synthesis seed")
	format := cmd.String("format", "wav", "Output format (wav, mp3, ogg, flac, aac)")
	out := cmd.String("out", "out.wav", "Output file")
	denoise := cmd.Bool("denoise", false, "Blend in a denoised rendition")
	timeout := cmd.Duration("timeout", 2*time.Minute, "Request timeout")
	cmd.Parse(args)

	if *text == "" && *ssmlPath == "" {
		return errors.New("one of -text or -ssml is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := connect(ctx, *server)
	if err != nil {
		return err
	}
	defer client.Close()

	var (
		subject string
		payload []byte
	)
	if *ssmlPath != "" {
		markup, err := os.ReadFile(*ssmlPath)
		if err != nil {
			return fmt.Errorf("read ssml: %w", err)
		}
		subject = protocol.SubjectSynthesizeSSML
		payload, err = json.Marshal(protocol.SSMLRequest{
			Markup:  string(markup),
			Format:  *format,
			Denoise: *denoise,
		})
		if err != nil {
			return err
		}
	} else {
		subject = protocol.SubjectSynthesizeText
		payload, err = json.Marshal(protocol.TextRequest{
			Text:    *text,
			Speaker: *spk,
			Style:   *style,
			Seed:    *seed,
			Format:  *format,
			Denoise: *denoise,
		})
		if err != nil {
			return err
		}
	}

	data, err := client.Request(ctx, subject, payload)
	if err != nil {
		return err
	}

	var reply protocol.SynthesisReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	if reply.Error != "" {
		return fmt.Errorf("synthesis failed: %s", reply.Error)
	}

	if err := os.WriteFile(*out, reply.Audio, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("wrote %s (%s, %d Hz, %d bytes)\n", *out, reply.Format, reply.SampleRate, len(reply.Audio))
	return nil
}

func runSpeakers(args []string) error {
	cmd := flag.NewFlagSet("speakers", flag.ExitOnError)
	server := cmd.String("server", "nats://localhost:4222", "NATS server URL")
	timeout := cmd.Duration("timeout", 10*time.Second, "Request timeout")
	cmd.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := connect(ctx, *server)
	if err != nil {
		return err
	}
	defer client.Close()

	data, err := client.Request(ctx, protocol.SubjectSpeakerList, nil)
	if err != nil {
		return err
	}

	var reply protocol.SpeakerListReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	if reply.Error != "" {
		return errors.New(reply.Error)
	}

	for _, spk := range reply.Speakers {
		fmt.Printf("%s\t%s\n", spk.DisplayName, spk.Description)
	}
	if len(reply.Styles) > 0 {
		fmt.Printf("styles: %v\n", reply.Styles)
	}
	return nil
}
