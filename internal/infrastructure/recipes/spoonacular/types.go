package spoonacular

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Wire formats of the Spoonacular REST API

type searchResponse struct {
	Results      []searchResult `json:"results"`
	TotalResults int            `json:"totalResults"`
}

type searchResult struct {
	ID                  int                  `json:"id"`
	Title               string               `json:"title"`
	ReadyInMinutes      int                  `json:"readyInMinutes"`
	ExtendedIngredients []extendedIngredient `json:"extendedIngredients"`
}

type extendedIngredient struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
	Name   string  `json:"name"`
}

type analyzedInstruction struct {
	Name  string         `json:"name"`
	Steps []analyzedStep `json:"steps"`
}

type analyzedStep struct {
	Number int    `json:"number"`
	Step   string `json:"step"`
}

type nutritionWidget struct {
	Calories flexString `json:"calories"`
	Carbs    flexString `json:"carbs"`
	Fat      flexString `json:"fat"`
	Protein  flexString `json:"protein"`
}

type videoSearchResponse struct {
	Videos       []video `json:"videos"`
	TotalResults int     `json:"totalResults"`
}

type video struct {
	Title     string `json:"title"`
	YouTubeID string `json:"youTubeId"`
}

// flexString accepts a JSON string or number; the nutrition widget has
// reported calories both ways.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}
