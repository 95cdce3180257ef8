package protocol

import (
	"colonyecon.ai/internal/sim/model"
	"colonyecon.ai/internal/sim/system"
)

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type CatalogDigests struct {
	SiteTypesDigest string `json:"site_types_digest"`
	SiteTypeCount   int    `json:"site_type_count"`
	TuningDigest    string `json:"tuning_digest"`
	RulesVersion    string `json:"rules_version"`
}

// RESOLVE (client -> server): rebuild one system and resolve every site.
type ResolveMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	ReqID           string        `json:"req_id"`
	System          system.Record `json:"system"`
	UseIncomplete   bool          `json:"use_incomplete,omitempty"`
	Lenient         bool          `json:"lenient,omitempty"`
	BuildOrder      []string      `json:"build_order,omitempty"`
	// SiteID, when set, is echoed back as Site in the reply.
	SiteID string `json:"site_id,omitempty"`
}

// RESOLVED (server -> client)
type ResolvedMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	ReqID           string          `json:"req_id"`
	RunID           string          `json:"run_id"`
	Digest          string          `json:"digest"`
	System          model.View      `json:"system"`
	Site            *model.SiteView `json:"site,omitempty"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message"`
	Suggestion      string `json:"suggestion,omitempty"`
}

func NewError(reqID, code, msg string) ErrorMsg {
	return ErrorMsg{
		Type:            TypeError,
		ProtocolVersion: Version,
		ReqID:           reqID,
		Code:            code,
		Message:         msg,
	}
}
