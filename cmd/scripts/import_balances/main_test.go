package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBalances(t *testing.T) {
	rows, err := parseBalances(strings.NewReader("owner,asset,amount\nalice, MEME, 100\nbob,MEME,18446744073709551615\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, balanceRow{Line: 2, Owner: "alice", Asset: "MEME", Amount: 100}, rows[0])
	assert.Equal(t, uint64(18446744073709551615), rows[1].Amount)

	_, err = parseBalances(strings.NewReader("alice,MEME,100\nbob,MEME,lots\n"))
	assert.Error(t, err)

	_, err = parseBalances(strings.NewReader("alice,MEME,0\n"))
	assert.Error(t, err)

	_, err = parseBalances(strings.NewReader("alice,MEME\n"))
	assert.Error(t, err)
}
