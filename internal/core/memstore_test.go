package core

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	db "github.com/JonMunkholm/ncmlookup/internal/database"
)

// memStore is an in-memory Store that follows the SQL semantics of the
// real queries closely enough for service tests.
type memStore struct {
	mu        sync.Mutex
	now       func() time.Time
	nextID    int64
	users     map[int64]db.User
	companies map[int64]db.Company
	contracts []db.Contract
	codes     map[int32]db.Code
	resets    map[[16]byte]db.PasswordReset

	// failNext makes the next call of the named method return the error.
	failNext map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		now:       time.Now,
		users:     map[int64]db.User{},
		companies: map[int64]db.Company{},
		codes:     map[int32]db.Code{},
		resets:    map[[16]byte]db.PasswordReset{},
		failNext:  map[string]error{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) fail(method string) error {
	if err, ok := m.failNext[method]; ok {
		delete(m.failNext, method)
		return err
	}
	return nil
}

func (m *memStore) ts() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: m.now(), Valid: true}
}

func uniqueErr(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func (m *memStore) CreateUser(_ context.Context, arg db.CreateUserParams) (db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateUser"); err != nil {
		return db.User{}, err
	}
	for _, u := range m.users {
		if u.Email == arg.Email {
			return db.User{}, uniqueErr("users_email_key")
		}
		if arg.IpAddress.Valid && u.IpAddress.Valid && u.IpAddress.String == arg.IpAddress.String {
			return db.User{}, uniqueErr("users_ip_address_key")
		}
	}
	u := db.User{
		ID:             m.id(),
		Email:          arg.Email,
		CnpjCpf:        arg.CnpjCpf,
		IpAddress:      arg.IpAddress,
		HashedPassword: arg.HashedPassword,
		FullName:       arg.FullName,
		Role:           arg.Role,
		IsActive:       true,
		CompanyID:      arg.CompanyID,
		CreatedAt:      m.ts(),
		UpdatedAt:      m.ts(),
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) GetUserByID(_ context.Context, id int64) (db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return db.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *memStore) findUser(match func(db.User) bool) (db.User, error) {
	for _, u := range m.users {
		if match(u) {
			return u, nil
		}
	}
	return db.User{}, pgx.ErrNoRows
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetUserByEmail"); err != nil {
		return db.User{}, err
	}
	return m.findUser(func(u db.User) bool { return u.Email == email })
}

func (m *memStore) GetUserByIPAddress(_ context.Context, ip string) (db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findUser(func(u db.User) bool { return u.IpAddress.Valid && u.IpAddress.String == ip })
}

func (m *memStore) ListUsers(context.Context) ([]db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]db.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) updateUser(id int64, fn func(*db.User)) (db.User, error) {
	u, ok := m.users[id]
	if !ok {
		return db.User{}, pgx.ErrNoRows
	}
	fn(&u)
	u.UpdatedAt = m.ts()
	m.users[id] = u
	return u, nil
}

func (m *memStore) SetUserActive(_ context.Context, arg db.SetUserActiveParams) (db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateUser(arg.ID, func(u *db.User) {
		if u.IsActive != arg.IsActive {
			u.StatusChangedAt = m.ts()
		}
		u.IsActive = arg.IsActive
	})
}

func (m *memStore) SetUserAuthenticated(_ context.Context, arg db.SetUserAuthenticatedParams) (db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateUser(arg.ID, func(u *db.User) { u.IsAuthenticated = arg.IsAuthenticated })
}

func (m *memStore) ClaimSession(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.findUser(func(u db.User) bool { return u.Email == email })
	if err != nil || u.IsAuthenticated {
		return false, nil
	}
	u.IsAuthenticated = true
	m.users[u.ID] = u
	return true, nil
}

func (m *memStore) ResetAllSessions(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, u := range m.users {
		if u.IsAuthenticated {
			u.IsAuthenticated = false
			m.users[id] = u
			n++
		}
	}
	return n, nil
}

func (m *memStore) SetUserCompany(_ context.Context, arg db.SetUserCompanyParams) (db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateUser(arg.ID, func(u *db.User) { u.CompanyID = arg.CompanyID })
}

func (m *memStore) SetUserPassword(_ context.Context, arg db.SetUserPasswordParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.updateUser(arg.ID, func(u *db.User) { u.HashedPassword = arg.HashedPassword }); err != nil {
		return 0, nil
	}
	return 1, nil
}

func (m *memStore) CreateCompany(_ context.Context, arg db.CreateCompanyParams) (db.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := db.Company{
		ID:                m.id(),
		CustomerName:      arg.CustomerName,
		Role:              arg.Role,
		CompanyName:       arg.CompanyName,
		Cnpj:              arg.Cnpj,
		PhoneNumber:       arg.PhoneNumber,
		Address:           arg.Address,
		ContractStartDate: arg.ContractStartDate,
		ContractEndDate:   arg.ContractEndDate,
		CnaeCompany:       arg.CnaeCompany,
		CnaeDescription:   arg.CnaeDescription,
		TaxRegime:         arg.TaxRegime,
		ErpCode:           arg.ErpCode,
		MonthlyValue:      arg.MonthlyValue,
		Email:             arg.Email,
		Cpf:               arg.Cpf,
		CreatedAt:         m.ts(),
	}
	m.companies[c.ID] = c
	return c, nil
}

func (m *memStore) GetCompanyByID(_ context.Context, id int64) (db.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.companies[id]
	if !ok {
		return db.Company{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *memStore) ListCompanies(context.Context) ([]db.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]db.Company, 0, len(m.companies))
	for _, c := range m.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) CreateContract(_ context.Context, arg db.CreateContractParams) (db.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := db.Contract{
		ID:                  m.id(),
		TypeOfContract:      arg.TypeOfContract,
		DateTimeAccepted:    arg.DateTimeAccepted,
		IsSignatureAccepted: arg.IsSignatureAccepted,
		TermContent:         arg.TermContent,
		IpAddress:           arg.IpAddress,
		UserID:              arg.UserID,
		CreatedAt:           m.ts(),
	}
	m.contracts = append(m.contracts, c)
	return c, nil
}

func (m *memStore) GetContractSignature(_ context.Context, arg db.GetContractSignatureParams) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.contracts {
		if c.UserID.Valid && c.UserID.Int64 == arg.UserID && c.TypeOfContract == arg.TypeOfContract {
			return c.IsSignatureAccepted, nil
		}
	}
	return false, pgx.ErrNoRows
}

func (m *memStore) GetCode(_ context.Context, code int32) (db.Code, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[code]
	if !ok {
		return db.Code{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *memStore) CreateCode(_ context.Context, code int32) (db.Code, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.codes[code]; ok {
		return db.Code{}, uniqueErr("code_code_key")
	}
	c := db.Code{ID: m.id(), Code: code, CreatedAt: m.ts()}
	m.codes[code] = c
	return c, nil
}

func (m *memStore) AttachCode(_ context.Context, arg db.AttachCodeParams) (db.Code, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[arg.Code]
	if !ok || c.IsCodeUsed {
		return db.Code{}, pgx.ErrNoRows
	}
	for _, other := range m.codes {
		if other.UserID.Valid && other.UserID.Int64 == arg.UserID {
			return db.Code{}, uniqueErr("code_user_id_key")
		}
	}
	c.IsCodeUsed = true
	c.UserID = pgtype.Int8{Int64: arg.UserID, Valid: true}
	m.codes[arg.Code] = c
	return c, nil
}

func (m *memStore) CreatePasswordReset(_ context.Context, arg db.CreatePasswordResetParams) (db.PasswordReset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := db.PasswordReset{ID: arg.ID, UserID: arg.UserID, ExpiresAt: arg.ExpiresAt, CreatedAt: m.ts()}
	m.resets[arg.ID.Bytes] = r
	return r, nil
}

func (m *memStore) GetPasswordReset(_ context.Context, id pgtype.UUID) (db.PasswordReset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resets[id.Bytes]
	if !ok {
		return db.PasswordReset{}, pgx.ErrNoRows
	}
	return r, nil
}

func (m *memStore) MarkPasswordResetUsed(_ context.Context, id pgtype.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resets[id.Bytes]
	if !ok || r.UsedAt.Valid {
		return 0, nil
	}
	r.UsedAt = m.ts()
	m.resets[id.Bytes] = r
	return 1, nil
}

func (m *memStore) PurgePasswordResets(_ context.Context, cutoff pgtype.Timestamptz) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, r := range m.resets {
		if r.UsedAt.Valid || r.ExpiresAt.Time.Before(cutoff.Time) {
			delete(m.resets, k)
			n++
		}
	}
	return n, nil
}

func (m *memStore) InTx(_ context.Context, fn func(Store) error) error {
	return fn(m)
}
