package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"farm-credit/internal/domain"
	"farm-credit/internal/service"
)

// promptInput pregunta cada campo del formulario; una línea vacía conserva el default.
// Las respuestas inválidas se vuelven a preguntar.
func promptInput(reader *bufio.Reader, out io.Writer) (service.InteractiveInput, error) {
	input := service.DefaultInteractiveInput()
	p := prompter{reader: reader, out: out}

	var err error
	if input.HouseholdSize, err = p.intInRange(domain.FeatureHouseholdSize, input.HouseholdSize,
		domain.HouseholdSizeMin, domain.HouseholdSizeMax); err != nil {
		return input, err
	}
	if input.MobileMoneyActivity, err = p.intInRange(domain.FeatureMobileMoneyActivity, input.MobileMoneyActivity,
		domain.MobileMoneyActivityMin, domain.MobileMoneyActivityMax); err != nil {
		return input, err
	}

	choices := []struct {
		feature string
		options []string
		value   *string
	}{
		{domain.FeatureEducation, domain.EducationLevels, &input.Education},
		{domain.FeaturePrimaryCrop, domain.PrimaryCrops, &input.PrimaryCrop},
		{domain.FeatureCreditworthiness, domain.CreditworthinessLevels, &input.Creditworthiness},
		{domain.FeatureMobileMoneyFrequency, domain.MobileMoneyFrequencies, &input.MobileMoneyFrequency},
		{domain.FeatureGender, domain.Genders, &input.Gender},
	}
	for _, c := range choices {
		if *c.value, err = p.choice(c.feature, c.options, *c.value); err != nil {
			return input, err
		}
	}

	targets := boolTargets(&input)
	for _, f := range boolFeatures {
		if *targets[f], err = p.yesNo(f, *targets[f]); err != nil {
			return input, err
		}
	}

	for _, f := range domain.NumericFeatures() {
		if input.Numeric[f], err = p.number(f, input.Numeric[f]); err != nil {
			return input, err
		}
	}
	return input, nil
}

type prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

// ask devuelve la respuesta sin espacios; "" significa conservar el default.
func (p prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.reader.ReadString('\n')
	if err != nil {
		// La última línea puede llegar sin salto final.
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", fmt.Errorf("leer input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p prompter) intInRange(feature string, def, lo, hi int) (int, error) {
	for {
		answer, err := p.ask(fmt.Sprintf("%s (%d-%d) [%d]: ", domain.FeatureLabel(feature), lo, hi, def))
		if err != nil {
			return 0, err
		}
		if answer == "" {
			return def, nil
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= lo && n <= hi {
			return n, nil
		}
		fmt.Fprintf(p.out, "Enter a whole number between %d and %d.\n", lo, hi)
	}
}

func (p prompter) choice(feature string, options []string, def string) (string, error) {
	fmt.Fprintf(p.out, "%s:\n", domain.FeatureLabel(feature))
	for i, o := range options {
		fmt.Fprintf(p.out, "  [%d] %s\n", i+1, o)
	}
	for {
		answer, err := p.ask(fmt.Sprintf("Select [%s]: ", def))
		if err != nil {
			return "", err
		}
		if answer == "" {
			return def, nil
		}
		if idx, err := strconv.Atoi(answer); err == nil && idx >= 1 && idx <= len(options) {
			return options[idx-1], nil
		}
		for _, o := range options {
			if strings.EqualFold(o, answer) {
				return o, nil
			}
		}
		fmt.Fprintln(p.out, "Invalid selection.")
	}
}

func (p prompter) yesNo(feature string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		answer, err := p.ask(fmt.Sprintf("%s? [%s]: ", domain.FeatureLabel(feature), hint))
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Answer y or n.")
	}
}

func (p prompter) number(feature string, def float64) (float64, error) {
	for {
		answer, err := p.ask(fmt.Sprintf("%s [%s]: ", domain.FeatureLabel(feature), strconv.FormatFloat(def, 'f', -1, 64)))
		if err != nil {
			return 0, err
		}
		if answer == "" {
			return def, nil
		}
		v, err := strconv.ParseFloat(answer, 64)
		if err == nil {
			return v, nil
		}
		fmt.Fprintln(p.out, "Enter a number.")
	}
}
