package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/ridoystarlord/custompost/apperr"
	"github.com/ridoystarlord/custompost/provisioner"
	"github.com/ridoystarlord/custompost/records"
	"github.com/ridoystarlord/custompost/schema"
	"github.com/ridoystarlord/custompost/storage"
)

// createTableBody is the JSON body of POST /custom-post/create-table.
type createTableBody struct {
	TableName  string          `json:"table_name"`
	Fields     json.RawMessage `json:"fields"`
	CategoryID json.RawMessage `json:"category_id"`
}

func decodeCreateTable(r *http.Request) (*createTableBody, error) {
	var body createTableBody
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperr.New(apperr.InvalidInput, "Table name and fields are required.").
				WithFields(map[string]string{"table_name": "required", "fields": "required"})
		}
		return nil, apperr.Wrap(apperr.InvalidInput, err, "Request body is not valid JSON.")
	}
	return &body, nil
}

// fieldsPayload returns the fields value, unwrapping a JSON string that itself
// holds the array or object.
func fieldsPayload(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return trimmed
	}
	var inner string
	if err := json.Unmarshal(trimmed, &inner); err != nil {
		return trimmed
	}
	return json.RawMessage(strings.TrimSpace(inner))
}

// categoryID accepts a JSON number, a numeric string, null or nothing.
func categoryID(raw json.RawMessage) (*int64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}

	var text string
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, nil
		}
	} else {
		text = string(trimmed)
	}

	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperr.New(apperr.InvalidInput, "category_id must be a positive integer").
			WithFields(map[string]string{"category_id": "must be a positive integer"})
	}
	return &id, nil
}

// decodeRecordPayload reads a record payload from a multipart form, a
// url-encoded form or a JSON object. The returned cleanup closes any opened
// upload and must be called once the payload has been consumed.
func (s *Server) decodeRecordPayload(w http.ResponseWriter, r *http.Request) (records.Payload, func(), error) {
	noop := func() {}
	p := records.Payload{Values: map[string]any{}, Files: map[string]storage.Upload{}}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(s.maxUpload); err != nil {
			return p, noop, apperr.Wrap(apperr.InvalidInput, err, "Could not read form data.")
		}
		for key, vals := range r.MultipartForm.Value {
			if len(vals) > 0 {
				p.Values[key] = vals[0]
			}
		}
		var opened []multipart.File
		cleanup := func() {
			for _, f := range opened {
				_ = f.Close()
			}
			_ = r.MultipartForm.RemoveAll()
		}
		for key, headers := range r.MultipartForm.File {
			if len(headers) == 0 {
				continue
			}
			f, err := headers[0].Open()
			if err != nil {
				cleanup()
				return p, noop, apperr.Wrap(apperr.InvalidInput, err, "Could not read upload %s.", key)
			}
			opened = append(opened, f)
			p.Files[key] = storage.Upload{Filename: headers[0].Filename, Content: f}
		}
		return p, cleanup, nil

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return p, noop, apperr.Wrap(apperr.InvalidInput, err, "Could not read form data.")
		}
		for key, vals := range r.PostForm {
			if len(vals) > 0 {
				p.Values[key] = vals[0]
			}
		}
		return p, noop, nil

	default:
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&p.Values); err != nil && !errors.Is(err, io.EOF) {
			return p, noop, apperr.Wrap(apperr.InvalidInput, err, "Request body is not a JSON object.")
		}
		if p.Values == nil {
			p.Values = map[string]any{}
		}
		return p, noop, nil
	}
}

// provisionRequest turns a decoded create-table body into a provisioner request.
func provisionRequest(body *createTableBody) (*provisioner.Request, error) {
	fieldErrs := map[string]string{}
	if strings.TrimSpace(body.TableName) == "" {
		fieldErrs["table_name"] = "required"
	}
	raw := fieldsPayload(body.Fields)
	if len(raw) == 0 || string(raw) == "null" {
		fieldErrs["fields"] = "required"
	}
	if len(fieldErrs) > 0 {
		return nil, apperr.New(apperr.InvalidInput, "Table name and fields are required.").WithFields(fieldErrs)
	}

	fields, skipped, err := schema.ParseFields(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, err, "%s", err.Error()).
			WithFields(map[string]string{"fields": err.Error()})
	}

	cat, err := categoryID(body.CategoryID)
	if err != nil {
		if apperr.CodeOf(err) == apperr.InvalidInput {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.InvalidInput, err, "category_id must be a positive integer").
			WithFields(map[string]string{"category_id": "must be a positive integer"})
	}

	return &provisioner.Request{
		TableName:  strings.TrimSpace(body.TableName),
		Fields:     fields,
		Malformed:  skipped,
		CategoryID: cat,
	}, nil
}
