package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/stopidhan/backend-buzjet-api/internal/logger"
	"github.com/stopidhan/backend-buzjet-api/pkg/types"
)

// Result messages.
const (
	MsgPackageCreated   = "package created"
	MsgPackageUpdated   = "package updated"
	MsgPackageFound     = "package found"
	MsgPackagesFound    = "packages found"
	MsgPackageDeleted   = "package deleted"
	MsgPackageNotFound  = "package not found"
	MsgLinksIncomplete  = "package saved but links are incomplete"
	MsgValidationFailed = "validation failed"
	MsgInternalError    = "internal error"

	MsgHotelsFound          = "hotels found"
	MsgTransportationsFound = "transportations found"
	MsgDestinationNotFound  = "destination not found"
)

// Service runs package requests through the Gate, the Composer and the
// Reader, and reports every outcome as a types.Result.
type Service struct {
	gate     *Gate
	composer *Composer
	reader   *Reader
	log      *logger.Logger
}

// NewService assembles a Service from its stages.
func NewService(gate *Gate, composer *Composer, reader *Reader, log *logger.Logger) (*Service, error) {
	if gate == nil {
		return nil, fmt.Errorf("new service: gate is nil")
	}
	if composer == nil {
		return nil, fmt.Errorf("new service: composer is nil")
	}
	if reader == nil {
		return nil, fmt.Errorf("new service: reader is nil")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{gate: gate, composer: composer, reader: reader, log: log.With("component", "catalog")}, nil
}

// New wires a Service whose stages all read and write through c.
func New(c types.Catalog, log *logger.Logger) (*Service, error) {
	if c == nil {
		return nil, fmt.Errorf("new service: catalog is nil")
	}
	gate, err := NewGate(c, c)
	if err != nil {
		return nil, err
	}
	composer, err := NewComposer(c, c, log)
	if err != nil {
		return nil, err
	}
	reader, err := NewReader(c, c, c)
	if err != nil {
		return nil, err
	}
	return NewService(gate, composer, reader, log)
}

// DecodePayload reads one JSON object, keeping numbers as json.Number so
// integers and decimals can be told apart.
func DecodePayload(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding payload: %v", types.ErrInvalidData, err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}

// CreatePackage validates payload and creates the package with both link
// sets. Status is 201 on success and 207 when the row was saved but a link
// set was not.
func (s *Service) CreatePackage(ctx context.Context, payload map[string]any) types.Result {
	in, err := s.gate.Validate(ctx, OpCreate, payload)
	if err != nil {
		return s.failure(err, MsgPackageNotFound)
	}
	pkg, err := s.composer.Create(ctx, in)
	if err != nil {
		return s.partial(ctx, pkg, err)
	}
	return s.view(ctx, pkg.ID, http.StatusCreated, MsgPackageCreated)
}

// UpdatePackage validates payload and applies it to package id.
func (s *Service) UpdatePackage(ctx context.Context, id int64, payload map[string]any) types.Result {
	in, err := s.gate.Validate(ctx, OpUpdate, payload)
	if err != nil {
		return s.failure(err, MsgPackageNotFound)
	}
	pkg, err := s.composer.Update(ctx, id, in)
	if err != nil {
		return s.partial(ctx, pkg, err)
	}
	return s.view(ctx, pkg.ID, http.StatusOK, MsgPackageUpdated)
}

// GetPackage returns the hydrated view of package id.
func (s *Service) GetPackage(ctx context.Context, id int64) types.Result {
	return s.view(ctx, id, http.StatusOK, MsgPackageFound)
}

// ListPackages returns the hydrated views of every package matching filter.
func (s *Service) ListPackages(ctx context.Context, filter types.Filter) types.Result {
	views, err := s.reader.List(ctx, filter)
	if err != nil {
		return s.failure(err, MsgPackageNotFound)
	}
	return types.Succeeded(http.StatusOK, MsgPackagesFound, views)
}

// DeletePackage removes package id and both of its link sets.
func (s *Service) DeletePackage(ctx context.Context, id int64) types.Result {
	if err := s.composer.Delete(ctx, id); err != nil {
		return s.failure(err, MsgPackageNotFound)
	}
	return types.Succeeded(http.StatusOK, MsgPackageDeleted, nil)
}

// HotelsNearDestination lists the hotels at the location of destination id.
func (s *Service) HotelsNearDestination(ctx context.Context, id int64) types.Result {
	hotels, err := s.reader.HotelsNearDestination(ctx, id)
	if err != nil {
		return s.failure(err, MsgDestinationNotFound)
	}
	return types.Succeeded(http.StatusOK, MsgHotelsFound, hotels)
}

// TransportationsNearDestination lists the transportations at the location
// of destination id.
func (s *Service) TransportationsNearDestination(ctx context.Context, id int64) types.Result {
	out, err := s.reader.TransportationsNearDestination(ctx, id)
	if err != nil {
		return s.failure(err, MsgDestinationNotFound)
	}
	return types.Succeeded(http.StatusOK, MsgTransportationsFound, out)
}

func (s *Service) view(ctx context.Context, id int64, status int, message string) types.Result {
	v, err := s.reader.Get(ctx, id)
	if err != nil {
		return s.failure(err, MsgPackageNotFound)
	}
	return types.Succeeded(status, message, v)
}

// partial reports a composer error. An IntegrityError still carries the
// saved package back to the caller.
func (s *Service) partial(ctx context.Context, pkg *types.Package, err error) types.Result {
	var ie *types.IntegrityError
	if !errors.As(err, &ie) || pkg == nil {
		return s.failure(err, MsgPackageNotFound)
	}

	var data any = &types.PackageView{Package: pkg}
	if v, verr := s.reader.Get(ctx, pkg.ID); verr == nil {
		data = v
	}
	r := types.Succeeded(types.StatusDegraded, MsgLinksIncomplete, data)
	r.Errors = map[string][]string{idsKey(ie.Relation): {ie.Error()}}
	r.Err = err
	return r
}

// failure maps err onto a failed Result.
func (s *Service) failure(err error, notFound string) types.Result {
	var ve *types.ValidationError
	switch {
	case errors.As(err, &ve):
		r := types.Failed(http.StatusUnprocessableEntity, MsgValidationFailed, err)
		r.Errors = ve.Fields
		return r
	case errors.Is(err, types.ErrNotFound):
		return types.Failed(http.StatusNotFound, notFound, err)
	case errors.Is(err, types.ErrInvalidData),
		errors.Is(err, types.ErrInvalidField),
		errors.Is(err, types.ErrInvalidFilter),
		errors.Is(err, ErrOwnerNotAdmin):
		r := types.Failed(http.StatusUnprocessableEntity, MsgValidationFailed, err)
		r.Errors = map[string][]string{"request": {err.Error()}}
		return r
	default:
		s.log.Error("catalog operation failed", "error", err.Error())
		return types.Failed(http.StatusInternalServerError, MsgInternalError, err)
	}
}
