package main

import (
	"context"
	"fmt"
	"time"

	"yunshu/internal/logging"
	"yunshu/internal/speaker"

	"github.com/spf13/cobra"
)

var (
	speakVoice   string
	speakRate    string
	speakPitch   string
	speakTimeout time.Duration
)

var speakCmd = &cobra.Command{
	Use:   "speak [text]",
	Short: "Send text to the speaker service and print the audio file path",
	Long: `speak submits text to the Yunshu speaker sidecar for synthesis and
prints the path of the generated audio file. The sidecar must already be
running; its address comes from the speaker_port config setting.`,
	Args: cobra.ExactArgs(1),
	RunE: runSpeak,
}

func init() {
	f := speakCmd.Flags()
	f.StringVar(&speakVoice, "voice", "", "voice name (default from config)")
	f.StringVar(&speakRate, "rate", "+0%", "speech rate adjustment")
	f.StringVar(&speakPitch, "pitch", "+0Hz", "speech pitch adjustment")
	f.DurationVar(&speakTimeout, "timeout", 30*time.Second, "how long to wait for synthesis")
}

func runSpeak(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.GetDefault()
	logger.SetDebug(cfg.Debug)

	voice := speakVoice
	if voice == "" {
		voice = cfg.SpeakerVoice
	}

	c := speaker.New(cfg, logger)
	ctx, cancel := context.WithTimeout(cmd.Context(), speakTimeout)
	defer cancel()

	if err := c.Health(ctx); err != nil {
		return err
	}

	path, err := c.Speak(ctx, speaker.Request{
		Text:  args[0],
		Voice: voice,
		Rate:  speakRate,
		Pitch: speakPitch,
	})
	if err != nil {
		return fmt.Errorf("speech synthesis failed: %w", err)
	}

	fmt.Println(path)
	return nil
}
