package core

import (
	"fmt"
	"strconv"
)

// Registry resolves chart-of-accounts entries by code, creating required
// accounts lazily from their templates so a posting operation never fails
// just because the ledger is empty.
type Registry struct {
	snap  *Snapshot
	newID IDAllocator
}

func NewRegistry(snap *Snapshot, newID IDAllocator) *Registry {
	return &Registry{snap: snap, newID: newID}
}

// Resolve returns the account with the given code, auto-creating it if
// absent. Required codes use their hard-coded template; anything else is
// created as a generic asset account so callers stay postable.
func (r *Registry) Resolve(code string) (Account, error) {
	if a := r.snap.AccountByCode(code); a != nil {
		return *a, nil
	}
	tmpl := TemplateFor(code)
	if tmpl == nil {
		tmpl = &AccountTemplate{Code: code, Name: "Account " + code, Type: Asset}
	}
	return r.create(Account{Code: tmpl.Code, Name: tmpl.Name, Type: tmpl.Type})
}

func (r *Registry) create(a Account) (Account, error) {
	id, err := r.newID("accounts")
	if err != nil {
		return Account{}, fmt.Errorf("allocate account id for %s: %w", a.Code, err)
	}
	a.ID = id
	r.snap.Accounts = append(r.snap.Accounts, a)
	return a, nil
}

// FindLinked returns the sub-account dedicated to one customer or supplier,
// if one exists. Callers fall back to the shared parent account otherwise.
func (r *Registry) FindLinked(et EntityType, entityID int64) (Account, bool) {
	for i := range r.snap.Accounts {
		a := &r.snap.Accounts[i]
		if a.LinkedEntityType == et && a.LinkedEntityID == entityID {
			return *a, true
		}
	}
	return Account{}, false
}

// EnsureEntityAccount returns the entity's dedicated sub-account, creating it
// under the customers/suppliers parent when missing. The sub-account code
// follows the convention "<parent>-<entity id>".
func (r *Registry) EnsureEntityAccount(et EntityType, entityID int64, name string) (Account, error) {
	if a, ok := r.FindLinked(et, entityID); ok {
		return a, nil
	}
	parent, err := r.Resolve(entityParentCode(et))
	if err != nil {
		return Account{}, err
	}
	if name == "" {
		name = string(et) + " " + strconv.FormatInt(entityID, 10)
	}
	return r.create(Account{
		Code:             parent.Code + "-" + strconv.FormatInt(entityID, 10),
		Name:             name,
		Type:             parent.Type,
		ParentCode:       parent.Code,
		LinkedEntityType: et,
		LinkedEntityID:   entityID,
	})
}

// Descendants returns every account below the given code in the hierarchy.
// The walk keeps a visited set so a malformed self-referencing hierarchy
// terminates instead of looping.
func (r *Registry) Descendants(code string) []Account {
	visited := map[string]bool{code: true}
	frontier := []string{code}
	var out []Account
	for len(frontier) > 0 {
		parent := frontier[0]
		frontier = frontier[1:]
		for i := range r.snap.Accounts {
			a := &r.snap.Accounts[i]
			if a.ParentCode == parent && !visited[a.Code] {
				visited[a.Code] = true
				out = append(out, *a)
				frontier = append(frontier, a.Code)
			}
		}
	}
	return out
}

// EffectiveType resolves the reporting type of an account: sub-accounts
// inherit their parent's type for roll-ups. Cycle-guarded like Descendants.
func (r *Registry) EffectiveType(a Account) AccountType {
	visited := map[string]bool{a.Code: true}
	cur := a
	for cur.ParentCode != "" && !visited[cur.ParentCode] {
		visited[cur.ParentCode] = true
		parent := r.snap.AccountByCode(cur.ParentCode)
		if parent == nil {
			break
		}
		cur = *parent
	}
	return cur.Type
}
