package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"Manifold/internal/domain"
	"Manifold/internal/domain/models"
	xutil "Manifold/pkg/util"
)

// readPoints parses timestamp,price[,volume] rows. A first row whose
// timestamp does not parse is treated as a header.
func readPoints(r io.Reader) ([]models.PricePoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var points []models.PricePoint
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrMalformedInput, line, err)
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("%w: line %d: want timestamp,price[,volume]", domain.ErrMalformedInput, line)
		}
		ts, ok := xutil.ParseTime(strings.TrimSpace(rec[0]))
		if !ok {
			if line == 1 && len(points) == 0 {
				continue
			}
			return nil, fmt.Errorf("%w: line %d: bad timestamp %q", domain.ErrMalformedInput, line, rec[0])
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad price %q", domain.ErrMalformedInput, line, rec[1])
		}
		p := models.PricePoint{Timestamp: ts, Price: price}
		if len(rec) > 2 && strings.TrimSpace(rec[2]) != "" {
			p.Volume, err = strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad volume %q", domain.ErrMalformedInput, line, rec[2])
			}
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil, domain.ErrNoData
	}
	return points, nil
}
