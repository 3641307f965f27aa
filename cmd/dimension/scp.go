package main

import (
	"fmt"
	"strconv"
	"strings"

	"hospital_dimensioning/pkg/core/scp"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) scpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scp",
		Short: "SCP classification method commands",
	}
	cmd.AddCommand(a.scpValidateCmd(), a.scpClassifyCmd())
	return cmd
}

func (a *app) scpValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [method-file]",
		Short: "Validate the questions and classification bands of a method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := scp.LoadMethod(args[0])
			if err != nil {
				return err
			}
			if err := scp.ValidateMethod(*m); err != nil {
				a.logger.Warn("method rejected", zap.String("method", m.Key), zap.Error(err))
				return err
			}
			a.logger.Info("method valid", zap.String("method", m.Key), zap.Int("bands", len(m.Bands)))
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"method":    m.Key,
				"valid":     true,
				"questions": len(m.Questions),
				"bands":     len(m.Bands),
			})
		},
	}
}

type classification struct {
	Method string  `json:"method"`
	Score  float64 `json:"score"`
	Class  string  `json:"class,omitempty"`
	Found  bool    `json:"found"`
}

func (a *app) scpClassifyCmd() *cobra.Command {
	var answers string
	cmd := &cobra.Command{
		Use:     "classify [method-file]",
		Short:   "Score answers against a method and classify the total",
		Example: `  dimension scp classify fugulin.yaml --answers estado_mental=1,oxigenacao=2`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := scp.LoadMethod(args[0])
			if err != nil {
				return err
			}
			if err := scp.ValidateMethod(*m); err != nil {
				return err
			}
			parsed, err := parseAnswers(answers)
			if err != nil {
				return err
			}
			score, err := scp.Score(*m, parsed)
			if err != nil {
				return err
			}
			class, ok := scp.Classify(m.Bands, score)
			return writeJSON(cmd.OutOrStdout(), classification{Method: m.Key, Score: score, Class: class, Found: ok})
		},
	}
	cmd.Flags().StringVar(&answers, "answers", "", "Comma separated key=value answers")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

func parseAnswers(s string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("answer %q: want key=value", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("answer %q: %w", pair, err)
		}
		out[strings.TrimSpace(key)] = v
	}
	return out, nil
}
