package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"greetcards/internal/models"
	"greetcards/internal/share"
	"greetcards/internal/slug"
	"greetcards/internal/validate"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.json|->",
		Short: "Validate a greeting document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return fmt.Errorf("read greeting: %w", err)
			}

			g := models.NewGreeting()
			if err := json.Unmarshal(data, g); err != nil {
				return fmt.Errorf("parse greeting: %w", err)
			}

			errs := validate.Greeting(g)
			if len(errs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			}
			for _, fe := range errs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", fe.Field, fe.Message)
			}
			logger.Debug("greeting rejected", zap.String("file", args[0]), zap.Int("errors", len(errs)))
			return fmt.Errorf("%d validation errors", len(errs))
		},
	}
}

func newSlugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slug <event> <receiver>",
		Short: "Generate a greeting slug",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), slug.New(args[0], args[1]))
			return nil
		},
	}
}

func newQRCmd() *cobra.Command {
	var (
		size int
		out  string
	)
	cmd := &cobra.Command{
		Use:   "qr <url>",
		Short: "Write the share QR code of a greeting page as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			png, err := share.QRCode(args[0], size)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(png)
				return err
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return err
			}
			logger.Info("qr code written", zap.String("path", out), zap.Int("bytes", len(png)))
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 256, "Image size in pixels")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (stdout when empty)")
	return cmd
}
