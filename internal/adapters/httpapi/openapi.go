package httpapi

import (
	"net/http"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/buildinfo"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/httpjson"
)

// handleOpenAPI décrit l'API locale de la console (lecture des view-models,
// commandes start/stop, contrôle du flux de logs).
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	jsonOK := func(schemaRef string) map[string]any {
		return map[string]any{
			"description": "OK",
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"$ref": schemaRef},
				},
			},
		}
	}

	jsonErr := map[string]any{
		"description": "Error",
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/Error"},
			},
		},
	}

	keyParams := []any{
		map[string]any{"name": "provider", "in": "path", "required": true, "schema": map[string]any{"type": "string", "enum": []any{"xtream", "m3u"}}},
		map[string]any{"name": "type", "in": "path", "required": true, "schema": map[string]any{"type": "string", "enum": []any{"movies", "series"}}},
		map[string]any{"name": "id", "in": "path", "required": true, "schema": map[string]any{"type": "integer"}},
	}

	command := map[string]any{
		"parameters": keyParams,
		"responses": map[string]any{
			"202": jsonOK("#/components/schemas/SyncStatus"),
			"400": jsonErr,
			"404": jsonErr,
			"409": jsonErr,
			"502": jsonErr,
		},
	}

	logState := jsonOK("#/components/schemas/LogState")

	spec := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "strmsync console API",
			"version": buildinfo.Version,
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"Error": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"error": map[string]any{"type": "string"},
						"code":  map[string]any{"type": "string"},
					},
					"required": []any{"error"},
				},
				"SyncStatus": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"ownerId":      map[string]any{"type": "integer"},
						"type":         map[string]any{"type": "string", "enum": []any{"movies", "series"}},
						"state":        map[string]any{"type": "string", "enum": []any{"idle", "running", "success", "failed", "cancelled"}},
						"lastSyncAt":   map[string]any{"type": "string"},
						"itemsAdded":   map[string]any{"type": "integer"},
						"itemsDeleted": map[string]any{"type": "integer"},
						"errorMessage": map[string]any{"type": "string"},
					},
					"required": []any{"ownerId", "type", "state"},
				},
				"StatusSnapshot": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"provider":  map[string]any{"type": "string"},
						"statuses":  map[string]any{"type": "array", "items": map[string]any{"$ref": "#/components/schemas/SyncStatus"}},
						"ready":     map[string]any{"type": "boolean"},
						"seq":       map[string]any{"type": "integer"},
						"updatedAt": map[string]any{"type": "string", "format": "date-time"},
						"lastError": map[string]any{"type": "string"},
					},
				},
				"Controls": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"status":  map[string]any{"$ref": "#/components/schemas/SyncStatus"},
						"label":   map[string]any{"type": "string", "enum": []any{"Sync Now", "Stop Sync"}},
						"action":  map[string]any{"type": "string", "enum": []any{"start", "stop"}},
						"enabled": map[string]any{"type": "boolean"},
						"busy":    map[string]any{"type": "boolean"},
					},
				},
				"LogState": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"connected": map[string]any{"type": "boolean"},
						"paused":    map[string]any{"type": "boolean"},
						"lines":     map[string]any{"type": "integer"},
						"pending":   map[string]any{"type": "integer"},
						"received":  map[string]any{"type": "integer"},
						"lastError": map[string]any{"type": "string"},
					},
				},
				"StatsSnapshot": map[string]any{
					"type":                 "object",
					"description":          "Dernière valeur de /dashboard/stats et état du poller.",
					"additionalProperties": true,
				},
			},
		},
		"paths": map[string]any{
			"/api/v1/health": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/api/v1/version": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/api/v1/events": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "SSE (sync.status, sync.transition, dashboard.stats, logs.line, logs.state, admin.state)"}}},
			},
			"/api/v1/status/{provider}": map[string]any{
				"get": map[string]any{
					"parameters": keyParams[:1],
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/StatusSnapshot"),
						"400": jsonErr,
						"404": jsonErr,
					},
				},
			},
			"/api/v1/status/{provider}/{type}/{id}": map[string]any{
				"get": map[string]any{
					"parameters": keyParams,
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/Controls"),
						"400": jsonErr,
					},
				},
			},
			"/api/v1/jobs/{provider}/{type}/{id}/start": map[string]any{"post": command},
			"/api/v1/jobs/{provider}/{type}/{id}/stop":  map[string]any{"post": command},
			"/api/v1/stats": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/StatsSnapshot")}},
			},
			"/api/v1/logs": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "Visible buffer and stream state"}}},
			},
			"/api/v1/logs/pause":  map[string]any{"post": map[string]any{"responses": map[string]any{"200": logState}}},
			"/api/v1/logs/resume": map[string]any{"post": map[string]any{"responses": map[string]any{"200": logState}}},
			"/api/v1/logs/clear":  map[string]any{"post": map[string]any{"responses": map[string]any{"200": logState}}},
			"/api/v1/logs/export": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "text/plain attachment"}}},
			},
		},
	}

	httpjson.Write(w, http.StatusOK, spec)
}
