package xid

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedMachine(id uint16) Option {
	return WithMachineID(func() (uint16, error) { return id, nil })
}

func TestGenerator_NewString(t *testing.T) {
	gen, err := NewGenerator(fixedMachine(7))
	require.NoError(t, err)

	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		s, err := gen.NewString()
		require.NoError(t, err)
		assert.LessOrEqual(t, len(s), 13)
		_, dup := seen[s]
		require.False(t, dup, "duplicate id %s", s)
		seen[s] = struct{}{}

		id, err := Parse(s)
		require.NoError(t, err)
		c, err := Decompose(id)
		require.NoError(t, err)
		assert.Equal(t, int64(7), c.Machine)
	}
}

func TestGenerator_Monotonic(t *testing.T) {
	gen, err := NewGenerator(fixedMachine(1))
	require.NoError(t, err)
	a, err := gen.New()
	require.NoError(t, err)
	b, err := gen.New()
	require.NoError(t, err)
	assert.Greater(t, b, a)
}

func TestNewGenerator_CheckMachineID(t *testing.T) {
	_, err := NewGenerator(fixedMachine(100), WithCheckMachineID(func(id uint16) bool { return id == 100 }))
	require.NoError(t, err)

	_, err = NewGenerator(fixedMachine(100), WithCheckMachineID(func(id uint16) bool { return id == 200 }))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewGenerator_MachineIDError(t *testing.T) {
	_, err := NewGenerator(WithMachineID(func() (uint16, error) { return 0, errors.New("boom") }))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestGenerator_OverTimeLimit(t *testing.T) {
	gen, err := NewGenerator(fixedMachine(1), WithStartTime(time.Now().Add(-200*365*24*time.Hour)))
	require.NoError(t, err)
	_, err = gen.NewString()
	assert.ErrorIs(t, err, ErrOverTimeLimit)
}

func TestGenerator_Nil(t *testing.T) {
	var g *Generator
	_, err := g.New()
	assert.ErrorIs(t, err, ErrNilGenerator)
	_, err = (&Generator{}).NewString()
	assert.ErrorIs(t, err, ErrNilGenerator)
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "!!", "0", "-1z", "zzzzzzzzzzzzzzzzzz"} {
		_, err := Parse(s)
		assert.ErrorIs(t, err, ErrInvalidID, s)
	}
	_, err := Decompose(0)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestDefaultMachineID(t *testing.T) {
	t.Run("explicit", func(t *testing.T) {
		t.Setenv(EnvMachineID, "12345")
		id, err := DefaultMachineID()
		require.NoError(t, err)
		assert.Equal(t, uint16(12345), id)
	})

	t.Run("explicit invalid", func(t *testing.T) {
		for _, v := range []string{"abc", "65536", "-1"} {
			t.Setenv(EnvMachineID, v)
			_, err := DefaultMachineID()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid")
		}
	})

	t.Run("pod name hash", func(t *testing.T) {
		t.Setenv(EnvMachineID, "")
		t.Setenv(EnvPodName, "xserve-0")
		id, err := DefaultMachineID()
		require.NoError(t, err)
		assert.Equal(t, hashToMachineID("xserve-0"), id)
	})

	t.Run("hostname env hash", func(t *testing.T) {
		t.Setenv(EnvMachineID, "")
		t.Setenv(EnvPodName, "")
		t.Setenv(EnvHostname, "node-a")
		id, err := DefaultMachineID()
		require.NoError(t, err)
		assert.Equal(t, hashToMachineID("node-a"), id)
	})

	t.Run("private ip fallback", func(t *testing.T) {
		t.Setenv(EnvMachineID, "")
		t.Setenv(EnvPodName, "")
		t.Setenv(EnvHostname, "")
		origHost, origAddrs := osHostname, netInterfaceAddrs
		t.Cleanup(func() { osHostname, netInterfaceAddrs = origHost, origAddrs })

		osHostname = func() (string, error) { return "", nil }
		netInterfaceAddrs = func() ([]net.Addr, error) {
			return []net.Addr{
				&net.IPNet{IP: net.ParseIP("127.0.0.1"), Mask: net.CIDRMask(8, 32)},
				&net.IPNet{IP: net.ParseIP("10.1.2.3"), Mask: net.CIDRMask(8, 32)},
			}, nil
		}
		id, err := DefaultMachineID()
		require.NoError(t, err)
		assert.Equal(t, uint16(2<<8|3), id)

		netInterfaceAddrs = func() ([]net.Addr, error) { return nil, nil }
		_, err = DefaultMachineID()
		assert.ErrorIs(t, err, ErrNoPrivateAddress)
	})
}

func TestHashToMachineID_Stable(t *testing.T) {
	assert.Equal(t, hashToMachineID("a"), hashToMachineID("a"))
	assert.NotEqual(t, hashToMachineID("a"), hashToMachineID("b"))
}
