package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errInvalidItems = errors.New("items must be positive integer ids")

// parseItemIDs aceita o parâmetro repetido (items=1&items=2) e também a
// forma separada por vírgula enviada pelo front (items=1,2). Qualquer
// elemento que não seja inteiro positivo invalida a lista inteira.
func parseItemIDs(values []string) ([]uint, error) {
	var ids []uint
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 32)
			if err != nil || id == 0 {
				return nil, fmt.Errorf("%w: %q", errInvalidItems, part)
			}
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}

func parseFloatParam(value string) (float64, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, true, err
	}
	return f, true, nil
}
