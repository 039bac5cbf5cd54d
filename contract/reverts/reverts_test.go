// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New(State, "test")
	assert.Equal(t, "test", revert.message)
	assert.Equal(t, revert.Error(), revert.message)
	assert.Equal(t, State, revert.Kind())

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
}

func Test_WrappedReverts(t *testing.T) {
	err := errors.WithMessagef(ErrProxyMismatch, "node %d", 7)

	assert.True(t, IsRevertErr(err))
	assert.ErrorIs(t, err, ErrProxyMismatch)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, Authorization, KindOf(err))
	assert.Equal(t, "node 7: proxy does not match the one on record", err.Error())

	assert.Equal(t, Kind(0), KindOf(errors.New("storage failure")))
	assert.Equal(t, "unknown", Kind(0).String())
}
