// Package memory is an in-process implementation of the repository
// layer used by tests. It mirrors the MySQL repositories method for
// method, including the sentinel errors, so services and handlers can
// be exercised without a database. Transactions are approximated with
// a coarse lock: RunInTx serializes units of work but does not roll
// back, which is fine for tests that only assert on success paths or
// fail before the first write.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pawssion/shelter-adoption/internal/model"
	"github.com/pawssion/shelter-adoption/internal/repository"
	"github.com/pawssion/shelter-adoption/internal/utils"
)

// Store holds all tables behind one mutex. Accessor methods return
// lightweight views with the same method sets as the MySQL repos.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users    map[uint64]model.User
	shelters map[uint64]model.Shelter
	animals  map[uint64]model.Animal
	requests map[uint64]model.AdoptionRequest
	notes    map[uint64]model.Notification
	tokens   map[string]refreshToken

	nextID uint64
}

type refreshToken struct {
	principalID uint64
	role        string
	expiresAt   time.Time
	revoked     bool
}

func NewStore() *Store {
	return &Store{
		users:    make(map[uint64]model.User),
		shelters: make(map[uint64]model.Shelter),
		animals:  make(map[uint64]model.Animal),
		requests: make(map[uint64]model.AdoptionRequest),
		notes:    make(map[uint64]model.Notification),
		tokens:   make(map[string]refreshToken),
	}
}

func (s *Store) Users() *Users                 { return &Users{s} }
func (s *Store) Shelters() *Shelters           { return &Shelters{s} }
func (s *Store) Animals() *Animals             { return &Animals{s} }
func (s *Store) Requests() *Requests           { return &Requests{s} }
func (s *Store) Notifications() *Notifications { return &Notifications{s} }
func (s *Store) Tokens() *Tokens               { return &Tokens{s} }

// RunInTx serializes the unit of work. No rollback.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}

func (s *Store) id() uint64 {
	s.nextID++
	return s.nextID
}

// Users is the in-memory counterpart of repository.UserRepo.
type Users struct{ s *Store }

func (v *Users) Create(ctx context.Context, u *model.User, password string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, ex := range v.s.users {
		if strings.EqualFold(ex.Email, u.Email) {
			return 0, repository.ErrEmailExists
		}
		if strings.EqualFold(ex.Username, u.Username) {
			return 0, repository.ErrUsernameExists
		}
	}
	u.ID = v.s.id()
	u.PasswordHash = hash
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	v.s.users[u.ID] = *u
	return u.ID, nil
}

func (v *Users) GetByEmail(ctx context.Context, email string) (model.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, u := range v.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (v *Users) GetByID(ctx context.Context, id uint64) (model.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	u, ok := v.s.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (v *Users) EmailTaken(ctx context.Context, email string) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, u := range v.s.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (v *Users) UsernameTaken(ctx context.Context, username string) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, u := range v.s.users {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (v *Users) UpdateProfile(ctx context.Context, u *model.User) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	cur, ok := v.s.users[u.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	cur.FirstName = u.FirstName
	cur.LastName = u.LastName
	cur.Contact = u.Contact
	cur.Address = u.Address
	cur.Age = u.Age
	cur.Gender = u.Gender
	cur.UpdatedAt = time.Now()
	v.s.users[u.ID] = cur
	return nil
}

func (v *Users) ListAdmins(ctx context.Context) ([]model.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []model.User
	for _, u := range v.s.users {
		if u.Role == model.RoleAdmin {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v *Users) EnsureAdmin(ctx context.Context, email, password string, cost int) error {
	taken, err := v.EmailTaken(ctx, email)
	if err != nil || taken {
		return err
	}
	_, err = v.Create(ctx, &model.User{
		FirstName: "Admin",
		Username:  "admin",
		Email:     email,
		Role:      model.RoleAdmin,
	}, password, cost)
	return err
}

// Shelters is the in-memory counterpart of repository.ShelterRepo.
type Shelters struct{ s *Store }

func (v *Shelters) Create(ctx context.Context, sh *model.Shelter, password string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, ex := range v.s.shelters {
		if strings.EqualFold(ex.Email, sh.Email) && ex.Approval != model.ApprovalRejected {
			return 0, repository.ErrEmailExists
		}
	}
	sh.ID = v.s.id()
	sh.PasswordHash = hash
	sh.Approval = model.ApprovalPending
	sh.CreatedAt = time.Now()
	sh.UpdatedAt = sh.CreatedAt
	v.s.shelters[sh.ID] = *sh
	return sh.ID, nil
}

func (v *Shelters) GetByID(ctx context.Context, id uint64) (model.Shelter, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	sh, ok := v.s.shelters[id]
	if !ok {
		return model.Shelter{}, repository.ErrShelterNotFound
	}
	return sh, nil
}

func (v *Shelters) GetByEmail(ctx context.Context, email string) (model.Shelter, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, sh := range v.s.shelters {
		if strings.EqualFold(sh.Email, email) {
			return sh, nil
		}
	}
	return model.Shelter{}, repository.ErrShelterNotFound
}

// EmailReserved matches non-rejected shelters only, same as the SQL
// query: a rejected shelter does not reserve its email.
func (v *Shelters) EmailReserved(ctx context.Context, email string) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, sh := range v.s.shelters {
		if strings.EqualFold(sh.Email, email) && sh.Approval != model.ApprovalRejected {
			return true, nil
		}
	}
	return false, nil
}

func (v *Shelters) PurgeRejectedByEmail(ctx context.Context, email string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for id, sh := range v.s.shelters {
		if strings.EqualFold(sh.Email, email) && sh.Approval == model.ApprovalRejected {
			delete(v.s.shelters, id)
		}
	}
	return nil
}

func (v *Shelters) SetApproval(ctx context.Context, id uint64, state model.ApprovalState) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	sh, ok := v.s.shelters[id]
	if !ok {
		return repository.ErrShelterNotFound
	}
	sh.Approval = state
	sh.UpdatedAt = time.Now()
	v.s.shelters[id] = sh
	return nil
}

func (v *Shelters) Delete(ctx context.Context, id uint64) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.shelters[id]; !ok {
		return repository.ErrShelterNotFound
	}
	delete(v.s.shelters, id)
	return nil
}

func (v *Shelters) ListByApproval(ctx context.Context, state model.ApprovalState) ([]model.Shelter, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []model.Shelter
	for _, sh := range v.s.shelters {
		if sh.Approval == state {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Animals is the in-memory counterpart of repository.AnimalRepo.
type Animals struct{ s *Store }

func (v *Animals) Create(ctx context.Context, a *model.Animal) (uint64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	a.ID = v.s.id()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	v.s.animals[a.ID] = *a
	return a.ID, nil
}

func (v *Animals) GetByID(ctx context.Context, id uint64) (model.Animal, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	a, ok := v.s.animals[id]
	if !ok {
		return model.Animal{}, repository.ErrAnimalNotFound
	}
	return a, nil
}

func (v *Animals) Update(ctx context.Context, a *model.Animal) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.animals[a.ID]; !ok {
		return repository.ErrAnimalNotFound
	}
	a.UpdatedAt = time.Now()
	v.s.animals[a.ID] = *a
	return nil
}

func (v *Animals) Delete(ctx context.Context, id uint64) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.animals[id]; !ok {
		return repository.ErrAnimalNotFound
	}
	delete(v.s.animals, id)
	return nil
}

func (v *Animals) ListByShelter(ctx context.Context, shelterID uint64) ([]model.Animal, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []model.Animal
	for _, a := range v.s.animals {
		if a.ShelterID == shelterID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v *Animals) ListByShelterAndType(ctx context.Context, shelterID uint64, animalType string) ([]model.Animal, error) {
	all, _ := v.ListByShelter(ctx, shelterID)
	out := all[:0]
	for _, a := range all {
		if strings.EqualFold(a.Type, animalType) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Requests is the in-memory counterpart of repository.AdoptionRepo.
type Requests struct{ s *Store }

func (v *Requests) Create(ctx context.Context, ar *model.AdoptionRequest) (uint64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, ex := range v.s.requests {
		if ex.UserID == ar.UserID && ex.AnimalID == ar.AnimalID {
			return 0, repository.ErrDuplicateRequest
		}
	}
	ar.ID = v.s.id()
	ar.Status = model.RequestPending
	ar.CreatedAt = time.Now()
	ar.UpdatedAt = ar.CreatedAt
	v.s.requests[ar.ID] = *ar
	return ar.ID, nil
}

func (v *Requests) GetByID(ctx context.Context, id uint64) (model.AdoptionRequest, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	ar, ok := v.s.requests[id]
	if !ok {
		return model.AdoptionRequest{}, repository.ErrRequestNotFound
	}
	return ar, nil
}

func (v *Requests) ExistsForUserAndAnimal(ctx context.Context, userID, animalID uint64) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, ar := range v.s.requests {
		if ar.UserID == userID && ar.AnimalID == animalID {
			return true, nil
		}
	}
	return false, nil
}

func (v *Requests) HasApprovedForAnimal(ctx context.Context, animalID uint64) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, ar := range v.s.requests {
		if ar.AnimalID == animalID && ar.Status == model.RequestApproved {
			return true, nil
		}
	}
	return false, nil
}

func (v *Requests) SetStatus(ctx context.Context, id uint64, status model.RequestStatus) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	ar, ok := v.s.requests[id]
	if !ok {
		return repository.ErrRequestNotFound
	}
	ar.Status = status
	ar.UpdatedAt = time.Now()
	v.s.requests[id] = ar
	return nil
}

func (v *Requests) ListPendingByAnimalExcept(ctx context.Context, animalID, exceptID uint64) ([]model.AdoptionRequest, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []model.AdoptionRequest
	for _, ar := range v.s.requests {
		if ar.AnimalID == animalID && ar.ID != exceptID && ar.Status == model.RequestPending {
			out = append(out, ar)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v *Requests) ListByAnimal(ctx context.Context, animalID uint64) ([]model.AdoptionRequest, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []model.AdoptionRequest
	for _, ar := range v.s.requests {
		if ar.AnimalID == animalID {
			out = append(out, ar)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListByUser returns only pending and approved requests, newest first,
// matching the SQL feed query.
func (v *Requests) ListByUser(ctx context.Context, userID uint64) ([]model.AdoptionRequest, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []model.AdoptionRequest
	for _, ar := range v.s.requests {
		if ar.UserID == userID && (ar.Status == model.RequestPending || ar.Status == model.RequestApproved) {
			out = append(out, ar)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (v *Requests) ListByShelterAndStatus(ctx context.Context, shelterID uint64, status model.RequestStatus) ([]model.AdoptionRequest, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []model.AdoptionRequest
	for _, ar := range v.s.requests {
		a, ok := v.s.animals[ar.AnimalID]
		if ok && a.ShelterID == shelterID && ar.Status == status {
			out = append(out, ar)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v *Requests) Delete(ctx context.Context, id uint64) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.requests[id]; !ok {
		return repository.ErrRequestNotFound
	}
	delete(v.s.requests, id)
	return nil
}

func (v *Requests) DeleteByAnimal(ctx context.Context, animalID uint64) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for id, ar := range v.s.requests {
		if ar.AnimalID == animalID {
			delete(v.s.requests, id)
		}
	}
	return nil
}

// Notifications is the in-memory counterpart of repository.NotificationRepo.
type Notifications struct{ s *Store }

func (v *Notifications) Add(ctx context.Context, rec model.Recipient, message string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	n := model.Notification{
		ID:        v.s.id(),
		Message:   message,
		CreatedAt: time.Now(),
	}
	if rec.UserID != 0 {
		id := rec.UserID
		n.UserID = &id
	} else {
		id := rec.ShelterID
		n.ShelterID = &id
	}
	v.s.notes[n.ID] = n
	return nil
}

func (v *Notifications) ListFor(ctx context.Context, rec model.Recipient) ([]model.Notification, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []model.Notification
	for _, n := range v.s.notes {
		if matches(n, rec) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (v *Notifications) MarkAllRead(ctx context.Context, rec model.Recipient) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for id, n := range v.s.notes {
		if matches(n, rec) {
			n.Read = true
			v.s.notes[id] = n
		}
	}
	return nil
}

func (v *Notifications) CountUnread(ctx context.Context, rec model.Recipient) (int, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	count := 0
	for _, n := range v.s.notes {
		if matches(n, rec) && !n.Read {
			count++
		}
	}
	return count, nil
}

func matches(n model.Notification, rec model.Recipient) bool {
	if rec.UserID != 0 {
		return n.UserID != nil && *n.UserID == rec.UserID
	}
	return n.ShelterID != nil && *n.ShelterID == rec.ShelterID
}

// Tokens is the in-memory counterpart of repository.TokenRepo.
type Tokens struct{ s *Store }

func (v *Tokens) StoreRefresh(ctx context.Context, principalID uint64, role, tokenHash string, exp time.Time) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.tokens[tokenHash] = refreshToken{principalID: principalID, role: role, expiresAt: exp}
	return nil
}

func (v *Tokens) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, string, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	t, ok := v.s.tokens[tokenHash]
	if !ok || t.revoked || time.Now().After(t.expiresAt) {
		return 0, "", repository.ErrForbidden
	}
	return t.principalID, t.role, nil
}

func (v *Tokens) RevokeByHash(ctx context.Context, tokenHash string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if t, ok := v.s.tokens[tokenHash]; ok {
		t.revoked = true
		v.s.tokens[tokenHash] = t
	}
	return nil
}

func (v *Tokens) RevokeAllFor(ctx context.Context, principalID uint64, role string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for h, t := range v.s.tokens {
		if t.principalID == principalID && t.role == role {
			t.revoked = true
			v.s.tokens[h] = t
		}
	}
	return nil
}
