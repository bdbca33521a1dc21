package simulator

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jmylchreest/switcherd/pkg/switcher"
)

// Handler serves the switcher gateway protocol under /switcher.
func (s *Switcher) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/switcher", func(r chi.Router) {
		r.Get("/info", func(w http.ResponseWriter, _ *http.Request) {
			info, err := s.info()
			respond(w, info, err)
		})
		r.Get("/inputs", func(w http.ResponseWriter, _ *http.Request) {
			inputs, err := s.inputs()
			respond(w, switcher.InputList{Inputs: inputs}, err)
		})
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
			respond(w, nil, s.ping())
		})

		r.Route("/me/0", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
				me, err := s.mixEffect()
				respond(w, me, err)
			})
			r.Put("/program", func(w http.ResponseWriter, req *http.Request) {
				var body switcher.InputSelection
				if !decode(w, req, &body) {
					return
				}
				respond(w, nil, s.setProgram(body.Input))
			})
			r.Put("/preview", func(w http.ResponseWriter, req *http.Request) {
				var body switcher.InputSelection
				if !decode(w, req, &body) {
					return
				}
				respond(w, nil, s.setPreview(body.Input))
			})
			r.Put("/transition/position", func(w http.ResponseWriter, req *http.Request) {
				var body switcher.TransitionPositionBody
				if !decode(w, req, &body) {
					return
				}
				respond(w, nil, s.setPosition(body.Position))
			})
			r.Put("/transition/mix", func(w http.ResponseWriter, req *http.Request) {
				var body switcher.MixRate
				if !decode(w, req, &body) {
					return
				}
				respond(w, nil, s.setRate(body.Rate))
			})
			r.Post("/transition/auto", func(w http.ResponseWriter, _ *http.Request) {
				respond(w, nil, s.startAuto())
			})
		})
	})

	// Test hooks for demos: take the switcher offline or cut from the "panel".
	r.Route("/sim", func(r chi.Router) {
		r.Get("/state", func(w http.ResponseWriter, _ *http.Request) {
			respond(w, s.Snapshot(), nil)
		})
		r.Put("/offline", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Offline bool `json:"offline"`
			}
			if !decode(w, req, &body) {
				return
			}
			s.SetOffline(body.Offline)
			w.WriteHeader(http.StatusNoContent)
		})
	})
	return r
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func respond(w http.ResponseWriter, body any, err error) {
	switch {
	case errors.Is(err, ErrOffline):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, errUnknownInput):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, errNoMix):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	case body == nil:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}
}
