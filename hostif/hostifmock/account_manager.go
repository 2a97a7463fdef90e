// Hand-written in the shape MockGen emits.
// Source: github.com/t3rn/circuit/hostif (interfaces: AccountManager)

// Package hostifmock holds hand-authored stand-ins for the mockgen output
// the teacher's Makefile produces for its own interfaces (e.g.
// vms/platformvm/state.NewMockDiff) — checked in here directly rather than
// regenerated, since this module has no go:generate/mockgen step of its
// own, but written in the exact shape mockgen emits so it drops in for
// go.uber.org/mock/gomock the same way the teacher's generated mocks do.
package hostifmock

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"

	hostif "github.com/t3rn/circuit/hostif"
	ids "github.com/t3rn/circuit/ids"
	xtx "github.com/t3rn/circuit/xtx"
)

// MockAccountManager is a mock of the AccountManager interface.
type MockAccountManager struct {
	ctrl     *gomock.Controller
	recorder *MockAccountManagerMockRecorder
}

// MockAccountManagerMockRecorder is the mock recorder for MockAccountManager.
type MockAccountManagerMockRecorder struct {
	mock *MockAccountManager
}

// NewMockAccountManager creates a new mock instance.
func NewMockAccountManager(ctrl *gomock.Controller) *MockAccountManager {
	mock := &MockAccountManager{ctrl: ctrl}
	mock.recorder = &MockAccountManagerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockAccountManager) EXPECT() *MockAccountManagerMockRecorder {
	return m.recorder
}

// Deposit mocks base method.
func (m *MockAccountManager) Deposit(chargeID ids.Id, payer xtx.Account, fee, reward uint64, source hostif.BenefitSource, role hostif.CircuitRole, recipient *xtx.Account) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Deposit", chargeID, payer, fee, reward, source, role, recipient)
	ret0, _ := ret[0].(error)
	return ret0
}

// Deposit indicates an expected call of Deposit.
func (mr *MockAccountManagerMockRecorder) Deposit(chargeID, payer, fee, reward, source, role, recipient any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Deposit", reflect.TypeOf((*MockAccountManager)(nil).Deposit), chargeID, payer, fee, reward, source, role, recipient)
}

// Finalize mocks base method.
func (m *MockAccountManager) Finalize(chargeID ids.Id, outcome hostif.Outcome, payee *xtx.Account, cost *uint64) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Finalize", chargeID, outcome, payee, cost)
	ret0, _ := ret[0].(error)
	return ret0
}

// Finalize indicates an expected call of Finalize.
func (mr *MockAccountManagerMockRecorder) Finalize(chargeID, outcome, payee, cost any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Finalize", reflect.TypeOf((*MockAccountManager)(nil).Finalize), chargeID, outcome, payee, cost)
}

// TryFinalize mocks base method.
func (m *MockAccountManager) TryFinalize(chargeID ids.Id, outcome hostif.Outcome, payee *xtx.Account, cost *uint64) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "TryFinalize", chargeID, outcome, payee, cost)
}

// TryFinalize indicates an expected call of TryFinalize.
func (mr *MockAccountManagerMockRecorder) TryFinalize(chargeID, outcome, payee, cost any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "TryFinalize", reflect.TypeOf((*MockAccountManager)(nil).TryFinalize), chargeID, outcome, payee, cost)
}

// Transfer mocks base method.
func (m *MockAccountManager) Transfer(from, to xtx.Account, amount uint64) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Transfer", from, to, amount)
	ret0, _ := ret[0].(error)
	return ret0
}

// Transfer indicates an expected call of Transfer.
func (mr *MockAccountManagerMockRecorder) Transfer(from, to, amount any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Transfer", reflect.TypeOf((*MockAccountManager)(nil).Transfer), from, to, amount)
}
