// Package memstore implementa los repositorios en memoria para los tests de
// service y controller. Respeta los mismos errores que el paquete repository.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront-api/internal/model"
	"storefront-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func parseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, repository.ErrInvalidID
	}
	return id, nil
}

func page[T any](in []*T, skip, limit int64) []*T {
	if skip >= int64(len(in)) {
		return []*T{}
	}
	in = in[skip:]
	if limit > 0 && int64(len(in)) > limit {
		in = in[:limit]
	}
	return in
}

// Orders

type Orders struct {
	mu   sync.RWMutex
	data map[primitive.ObjectID]model.Order
	seq  time.Duration
}

func NewOrders() *Orders {
	return &Orders{data: map[primitive.ObjectID]model.Order{}}
}

func cloneOrder(o model.Order) *model.Order {
	o.Items = append([]model.OrderItem(nil), o.Items...)
	return &o
}

func (r *Orders) Insert(_ context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	if o.CreatedAt.IsZero() {
		// desempata órdenes creadas en el mismo instante
		r.seq += time.Millisecond
		o.CreatedAt = time.Now().UTC().Add(r.seq)
	}
	o.UpdatedAt = o.CreatedAt
	r.data[o.ID] = *cloneOrder(*o)
	return nil
}

func (r *Orders) FindByID(_ context.Context, id string) (*model.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.data[oid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *Orders) FindOwned(ctx context.Context, id, userID string) (*model.Order, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	o, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != uid {
		return nil, repository.ErrNotFound
	}
	return o, nil
}

func (r *Orders) FindByPaymentIntent(_ context.Context, intentID string) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.data {
		if intentID != "" && o.PaymentIntentID == intentID {
			return cloneOrder(o), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Orders) filter(keep func(model.Order) bool) []*model.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.Order{}
	for _, o := range r.data {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *Orders) FindByUser(_ context.Context, userID string) ([]*model.Order, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	return r.filter(func(o model.Order) bool { return o.UserID == uid }), nil
}

func (r *Orders) List(_ context.Context, status model.OrderStatus, skip, limit int64) ([]*model.Order, error) {
	all := r.filter(func(o model.Order) bool { return status == "" || o.Status == status })
	return page(all, skip, limit), nil
}

func (r *Orders) Count(_ context.Context, status model.OrderStatus) (int64, error) {
	all := r.filter(func(o model.Order) bool { return status == "" || o.Status == status })
	return int64(len(all)), nil
}

func (r *Orders) Recent(ctx context.Context, limit int64) ([]*model.Order, error) {
	return r.List(ctx, "", 0, limit)
}

func (r *Orders) Revenue(_ context.Context) (float64, error) {
	total := 0.0
	for _, o := range r.filter(func(o model.Order) bool { return o.Status != model.StatusCancelled }) {
		total += o.TotalAmount
	}
	return total, nil
}

func (r *Orders) Replace(_ context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[o.ID]; !ok {
		return repository.ErrNotFound
	}
	o.UpdatedAt = time.Now().UTC()
	r.data[o.ID] = *cloneOrder(*o)
	return nil
}

// Products

type Products struct {
	mu   sync.RWMutex
	data map[primitive.ObjectID]model.Product
}

func NewProducts() *Products {
	return &Products{data: map[primitive.ObjectID]model.Product{}}
}

func (r *Products) Insert(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	r.data[p.ID] = *p
	return nil
}

func (r *Products) FindByID(_ context.Context, id string) (*model.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data[oid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func matchProduct(p model.Product, f model.ProductFilter) bool {
	if f.ActiveOnly && !p.IsActive {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		return strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q)
	}
	return true
}

func (r *Products) matching(f model.ProductFilter) []*model.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.Product{}
	for _, p := range r.data {
		if matchProduct(p, f) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *Products) List(_ context.Context, f model.ProductFilter, skip, limit int64) ([]*model.Product, error) {
	return page(r.matching(f), skip, limit), nil
}

func (r *Products) Count(_ context.Context, f model.ProductFilter) (int64, error) {
	return int64(len(r.matching(f))), nil
}

func (r *Products) Replace(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[p.ID]; !ok {
		return repository.ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	r.data[p.ID] = *p
	return nil
}

func (r *Products) Delete(_ context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[oid]; !ok {
		return repository.ErrNotFound
	}
	delete(r.data, oid)
	return nil
}

// Users

type Users struct {
	mu   sync.RWMutex
	data map[primitive.ObjectID]model.User
}

func NewUsers() *Users {
	return &Users{data: map[primitive.ObjectID]model.User{}}
}

// emailTaken replica el índice único de email. Requiere el lock tomado.
func (r *Users) emailTaken(email string, except primitive.ObjectID) bool {
	for id, u := range r.data {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (r *Users) Insert(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if r.emailTaken(u.Email, primitive.NilObjectID) {
		return repository.ErrDuplicateKey
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.UpdatedAt = u.CreatedAt
	r.data[u.ID] = *u
	return nil
}

func (r *Users) FindByID(_ context.Context, id string) (*model.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.data[oid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.data {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[primitive.ObjectID]*model.User, len(ids))
	for _, id := range ids {
		if u, ok := r.data[id]; ok {
			out[id] = &u
		}
	}
	return out, nil
}

func (r *Users) FindAdmins(_ context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.User{}
	for _, u := range r.data {
		if u.IsAdmin {
			u := u
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *Users) CountCustomers(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, u := range r.data {
		if !u.IsAdmin {
			n++
		}
	}
	return n, nil
}

func (r *Users) Replace(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[u.ID]; !ok {
		return repository.ErrNotFound
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if r.emailTaken(u.Email, u.ID) {
		return repository.ErrDuplicateKey
	}
	u.UpdatedAt = time.Now().UTC()
	r.data[u.ID] = *u
	return nil
}

// PaymentSettings

type PaymentSettings struct {
	mu   sync.RWMutex
	data map[primitive.ObjectID]model.PaymentSettings
	seq  time.Duration
}

func NewPaymentSettings() *PaymentSettings {
	return &PaymentSettings{data: map[primitive.ObjectID]model.PaymentSettings{}}
}

// activeConflict replica el índice parcial único sobre isActive. Requiere el
// lock tomado.
func (r *PaymentSettings) activeConflict(s *model.PaymentSettings) bool {
	if !s.IsActive {
		return false
	}
	for id, other := range r.data {
		if id != s.ID && other.IsActive {
			return true
		}
	}
	return false
}

func (r *PaymentSettings) Insert(_ context.Context, s *model.PaymentSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	if r.activeConflict(s) {
		return repository.ErrDuplicateKey
	}
	r.seq += time.Millisecond
	s.CreatedAt = time.Now().UTC().Add(r.seq)
	s.UpdatedAt = s.CreatedAt
	r.data[s.ID] = *s
	return nil
}

func (r *PaymentSettings) FindByID(_ context.Context, id string) (*model.PaymentSettings, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.data[oid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *PaymentSettings) FindActive(_ context.Context) (*model.PaymentSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.data {
		if s.IsActive {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *PaymentSettings) FindAll(_ context.Context) ([]*model.PaymentSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.PaymentSettings{}
	for _, s := range r.data {
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *PaymentSettings) DeactivateOthers(_ context.Context, keepID string) error {
	var keep primitive.ObjectID
	if keepID != "" {
		oid, err := parseID(keepID)
		if err != nil {
			return err
		}
		keep = oid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.data {
		if id != keep && s.IsActive {
			s.IsActive = false
			s.UpdatedAt = time.Now().UTC()
			r.data[id] = s
		}
	}
	return nil
}

func (r *PaymentSettings) Replace(_ context.Context, s *model.PaymentSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[s.ID]; !ok {
		return repository.ErrNotFound
	}
	if r.activeConflict(s) {
		return repository.ErrDuplicateKey
	}
	s.UpdatedAt = time.Now().UTC()
	r.data[s.ID] = *s
	return nil
}

func (r *PaymentSettings) Delete(_ context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[oid]; !ok {
		return repository.ErrNotFound
	}
	delete(r.data, oid)
	return nil
}

// ActiveCount es un atajo para los tests del invariante de registro activo.
func (r *PaymentSettings) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.data {
		if s.IsActive {
			n++
		}
	}
	return n
}
