// Package sse lit un flux text/event-stream côté client.
package sse

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"
)

// maxLine borne une ligne de log démesurée (une trace Python, par exemple).
const maxLine = 1 << 20

// Event est un message SSE complet (après la ligne vide de fin).
type Event struct {
	ID    string
	Event string
	Data  string
	Retry time.Duration
}

type Reader struct {
	sc     *bufio.Scanner
	body   io.ReadCloser
	lastID string
}

func NewReader(body io.ReadCloser) *Reader {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &Reader{sc: sc, body: body}
}

// Next bloque jusqu'au prochain message. Les commentaires (": ping") et les
// blocs sans data sont ignorés. io.EOF signale une fin de flux propre.
func (r *Reader) Next() (Event, error) {
	var (
		evt     Event
		data    []string
		hasData bool
	)
	for r.sc.Scan() {
		line := strings.TrimSuffix(r.sc.Text(), "\r")
		if line == "" {
			if hasData {
				evt.Data = strings.Join(data, "\n")
				if evt.ID == "" {
					evt.ID = r.lastID
				}
				return evt, nil
			}
			evt = Event{}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "data":
			data = append(data, value)
			hasData = true
		case "event":
			evt.Event = value
		case "id":
			evt.ID = value
			r.lastID = value
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil {
				evt.Retry = time.Duration(ms) * time.Millisecond
			}
		}
	}
	if err := r.sc.Err(); err != nil {
		return Event{}, err
	}
	// flux coupé au milieu d'un message: on le livre quand même
	if hasData {
		evt.Data = strings.Join(data, "\n")
		return evt, nil
	}
	return Event{}, io.EOF
}

func (r *Reader) Close() error {
	return r.body.Close()
}

// Lines adapte un Reader en flux de lignes: un message = une ligne.
type Lines struct {
	r *Reader
}

func NewLines(body io.ReadCloser) *Lines {
	return &Lines{r: NewReader(body)}
}

func (l *Lines) Next() (string, error) {
	evt, err := l.r.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", err
	}
	return strings.TrimRight(evt.Data, "\r\n"), nil
}

func (l *Lines) Close() error {
	return l.r.Close()
}
