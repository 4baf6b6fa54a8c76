package client

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/notesync/internal/client/models"
)

// toStruct converts a JSON-tagged Go value into a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	st := &structpb.Struct{}
	if v == nil {
		return st, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	if err := protojson.Unmarshal(b, st); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return st, nil
}

// fromStruct decodes st into the JSON-tagged Go value v.
func fromStruct(st *structpb.Struct, v any) error {
	if v == nil {
		return nil
	}
	b, err := protojson.Marshal(st)
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type noteIDRequest struct {
	ID models.NoteID `json:"id,string"`
}

type noteRequest struct {
	ID   models.NoteID     `json:"id,string,omitempty"`
	Note models.NoteFields `json:"note"`
}

type starPinRequest struct {
	ID        models.NoteID `json:"id,string"`
	IsStarred bool          `json:"isStarred"`
	IsPinned  bool          `json:"isPinned"`
}

type identityRequest struct {
	Identity string `json:"principal"`
}

type profileRequest struct {
	Profile models.UserProfile `json:"profile"`
}

type notesResponse struct {
	Notes []models.Note `json:"notes"`
}

type noteResponse struct {
	Note *models.Note `json:"note"`
}

type createNoteResponse struct {
	ID models.NoteID `json:"id,string"`
}

type likersResponse struct {
	Likers []models.NoteLiker `json:"likers"`
}

type profileResponse struct {
	Profile *models.UserProfile `json:"profile"`
}

type usersResponse struct {
	Users []models.ExtendedUserProfile `json:"users"`
}
