package main

import (
	"fmt"

	"github.com/healthsim/diagnosis/internal/classifier"
	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	var (
		symptoms    []string
		temperature float64
		age         int
		sex         string
		heartRate   int
		explain     bool
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a single observation and print its category",
		Example: `  diagnosis classify --symptom cough --symptom "sore throat" \
    --temperature 37.5 --age 25 --sex feminine --heart-rate 80`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, d, err := classifier.New().Evaluate(classifier.RawObservation{
				Symptoms:    symptoms,
				Temperature: temperature,
				Age:         age,
				Sex:         sex,
				HeartRate:   heartRate,
			})
			if err != nil {
				return fmt.Errorf("invalid observation: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, d.Category)
			if explain {
				fmt.Fprintf(out, "rule:       %s\n", d.Rule)
				fmt.Fprintf(out, "symptoms:   %v\n", o.Symptoms)
				fmt.Fprintf(out, "heart rate: %d (normal up to %d for age %d)\n", o.HeartRate, d.Thresholds.NormalHigh, o.Age)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&symptoms, "symptom", nil, "Reported symptom (repeatable)")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "Body temperature in degrees Celsius")
	cmd.Flags().IntVar(&age, "age", 0, "Age in years")
	cmd.Flags().StringVar(&sex, "sex", "", "masculine or feminine")
	cmd.Flags().IntVar(&heartRate, "heart-rate", 0, "Heart rate in beats per minute")
	cmd.Flags().BoolVar(&explain, "explain", false, "Print the rule that decided the category")
	for _, name := range []string{"temperature", "age", "sex", "heart-rate"} {
		cmd.MarkFlagRequired(name)
	}
	return cmd
}
