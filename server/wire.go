package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/zeu5/fights/gomoku"
	"github.com/zeu5/fights/types"
)

var ErrBadRequest = errors.New("server: bad request")

const createSchema = `{
	"type": "object",
	"properties": {
		"width": {"type": "integer", "minimum": 1, "maximum": 256},
		"height": {"type": "integer", "minimum": 1, "maximum": 256},
		"win_condition": {"type": "integer", "minimum": 1},
		"participants": {
			"type": "array",
			"items": {"type": "string", "minLength": 1},
			"minItems": 2,
			"maxItems": 2
		}
	},
	"additionalProperties": false
}`

const stepSchema = `{
	"type": "object",
	"required": ["participant", "action"],
	"properties": {
		"participant": {"type": "string"},
		"action": {
			"type": "array",
			"items": {"type": "integer"},
			"minItems": 2,
			"maxItems": 2
		}
	},
	"additionalProperties": false
}`

const socketSchema = `{
	"type": "object",
	"required": ["type"],
	"properties": {
		"type": {"enum": ["step", "reset", "state"]},
		"participant": {"type": "string"},
		"action": {
			"type": "array",
			"items": {"type": "integer"},
			"minItems": 2,
			"maxItems": 2
		}
	},
	"if": {"properties": {"type": {"const": "step"}}},
	"then": {"required": ["participant", "action"]},
	"additionalProperties": false
}`

var (
	createRequestSchema = jsonschema.MustCompileString("create.schema.json", createSchema)
	stepRequestSchema   = jsonschema.MustCompileString("step.schema.json", stepSchema)
	socketMessageSchema = jsonschema.MustCompileString("socket.schema.json", socketSchema)
)

type createRequest struct {
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	WinCondition int      `json:"win_condition"`
	Participants []string `json:"participants"`
}

type stepRequest struct {
	Participant string        `json:"participant"`
	Action      gomoku.Action `json:"action"`
}

type socketMessage struct {
	Type        string        `json:"type"`
	Participant string        `json:"participant"`
	Action      gomoku.Action `json:"action"`
}

// decode validates b against schema before unmarshalling it into v
func decode(schema *jsonschema.Schema, b []byte, v any) error {
	var doc any
	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()
	if err := d.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

// resultResponse is the wire form of a result
type resultResponse struct {
	State    gomoku.Board `json:"state"`
	Reward   float64      `json:"reward"`
	Done     bool         `json:"done"`
	Info     string       `json:"info"`
	Accepted bool         `json:"accepted"`
	Reason   string       `json:"reason,omitempty"`
}

func newResultResponse(r types.Result[gomoku.Board]) resultResponse {
	return resultResponse{
		State:    r.State,
		Reward:   r.Reward,
		Done:     r.Done,
		Info:     r.Info,
		Accepted: true,
	}
}

func newStepResponse(o StepOutcome) resultResponse {
	resp := newResultResponse(o.Result)
	resp.Accepted = o.Accepted
	if o.Reason != nil {
		resp.Reason = o.Reason.Error()
	}
	return resp
}

type socketResponse struct {
	Type    string          `json:"type"`
	Result  *resultResponse `json:"result,omitempty"`
	Session *SessionView    `json:"session,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type roomResponse struct {
	ID           string              `json:"id"`
	Participants []types.Participant `json:"participants"`
	Phase        string              `json:"phase"`
}
