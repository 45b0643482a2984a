package server

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ridoystarlord/custompost/apperr"
	"github.com/ridoystarlord/custompost/auth"
	"github.com/ridoystarlord/custompost/provisioner"
	"github.com/ridoystarlord/custompost/records"
)

type tableEntry struct {
	TableName string `json:"table_name"`
}

type createdRecord struct {
	ID int64 `json:"id"`
}

func requestLog(r *http.Request) zerolog.Logger {
	return *zerolog.Ctx(r.Context())
}

func (s *Server) requireCaller(r *http.Request) (*auth.Caller, error) {
	caller := auth.CallerFrom(r.Context())
	if caller == nil {
		return nil, apperr.New(apperr.Unauthorized, "Unauthorized")
	}
	return caller, nil
}

// requireTable checks that table is an existing dynamic table the caller may
// manage.
func (s *Server) requireTable(r *http.Request, caller *auth.Caller, table string) error {
	exists, err := s.catalog.TableExists(r.Context(), table)
	if err != nil {
		return apperr.Storage(err, "check table %s", table)
	}
	if !exists {
		return apperr.New(apperr.NotFound, "Table not found")
	}
	if !s.policy.CanManage(r.Context(), caller, table) {
		return apperr.New(apperr.Forbidden, "Forbidden")
	}
	return nil
}

func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	log := requestLog(r)
	caller, err := s.requireCaller(r)
	if err != nil {
		writeError(w, log, err)
		return
	}

	body, err := decodeCreateTable(r)
	if err != nil {
		writeError(w, log, err)
		return
	}
	req, err := provisionRequest(body)
	if err != nil {
		writeError(w, log, err)
		return
	}

	if name, err := provisioner.PhysicalName(s.catalog.Prefix(), req.TableName); err == nil {
		if !s.policy.CanManage(r.Context(), caller, name) {
			writeError(w, log, apperr.New(apperr.Forbidden, "Forbidden"))
			return
		}
	}

	res, err := s.prov.CreateTable(r.Context(), *req)
	if err != nil {
		writeError(w, log, err)
		return
	}

	log.Info().Str("user", caller.Username).Str("table", res.TableName).Msg("table provisioned")
	writeOK(w, "Table '"+res.TableName+"' created successfully", res)
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	log := requestLog(r)
	caller, err := s.requireCaller(r)
	if err != nil {
		writeError(w, log, err)
		return
	}

	names, err := s.catalog.ListDynamicTables(r.Context())
	if err != nil {
		writeError(w, log, apperr.Storage(err, "list tables"))
		return
	}

	tables := make([]tableEntry, 0, len(names))
	for _, name := range names {
		if s.policy.CanManage(r.Context(), caller, name) {
			tables = append(tables, tableEntry{TableName: name})
		}
	}
	writeOK(w, "All Post List!", tables)
}

func (s *Server) handleFormFields(w http.ResponseWriter, r *http.Request) {
	log := requestLog(r)
	table := r.PathValue("table")

	caller, err := s.requireCaller(r)
	if err != nil {
		writeError(w, log, err)
		return
	}
	if err := s.requireTable(r, caller, table); err != nil {
		writeError(w, log, err)
		return
	}

	fields, err := s.forms.FormFields(r.Context(), table)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeOK(w, "", fields)
}

// recordTable resolves the caller and the {table} path value before any
// request body is read.
func (s *Server) recordTable(r *http.Request) (*auth.Caller, string, error) {
	caller, err := s.requireCaller(r)
	if err != nil {
		return nil, "", err
	}
	table := r.PathValue("table")
	if err := s.requireTable(r, caller, table); err != nil {
		return nil, "", err
	}
	return caller, table, nil
}

// recordTarget is recordTable plus the {id} path value.
func (s *Server) recordTarget(r *http.Request) (*auth.Caller, string, int64, error) {
	caller, table, err := s.recordTable(r)
	if err != nil {
		return nil, "", 0, err
	}
	id, err := records.ParseID(r.PathValue("id"))
	if err != nil {
		return nil, "", 0, err
	}
	return caller, table, id, nil
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	log := requestLog(r)
	caller, table, err := s.recordTable(r)
	if err != nil {
		writeError(w, log, err)
		return
	}

	payload, cleanup, err := s.decodeRecordPayload(w, r)
	if err != nil {
		writeError(w, log, err)
		return
	}
	defer cleanup()

	id, err := s.records.Create(r.Context(), caller, table, payload)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeOK(w, "Post created successfully!", createdRecord{ID: id})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	log := requestLog(r)
	caller, table, err := s.recordTable(r)
	if err != nil {
		writeError(w, log, err)
		return
	}

	rows, err := s.records.List(r.Context(), caller, table)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeOK(w, "", rows)
}

func (s *Server) handleRecordDetails(w http.ResponseWriter, r *http.Request) {
	log := requestLog(r)
	caller, table, id, err := s.recordTarget(r)
	if err != nil {
		writeError(w, log, err)
		return
	}

	row, err := s.records.Get(r.Context(), caller, table, id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeOK(w, "", row)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	log := requestLog(r)
	caller, table, id, err := s.recordTarget(r)
	if err != nil {
		writeError(w, log, err)
		return
	}

	payload, cleanup, err := s.decodeRecordPayload(w, r)
	if err != nil {
		writeError(w, log, err)
		return
	}
	defer cleanup()

	if err := s.records.Update(r.Context(), caller, table, id, payload); err != nil {
		writeError(w, log, err)
		return
	}
	writeOK(w, "Post updated successfully!", nil)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	log := requestLog(r)
	caller, table, id, err := s.recordTarget(r)
	if err != nil {
		writeError(w, log, err)
		return
	}

	if err := s.records.Delete(r.Context(), caller, table, id); err != nil {
		writeError(w, log, err)
		return
	}
	writeOK(w, "Post deleted successfully!", nil)
}
