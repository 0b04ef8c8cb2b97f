package plc

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/dbemit"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/naming"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/transport"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/walker"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

const sampleDoc = `<?xml version="1.0"?>
<Symbols>
  <Symbol>
    <Name>MAIN.x</Name>
    <Type>INT</Type>
    <IGroup>16448</IGroup>
    <IOffset>0</IOffset>
    <BitSize>16</BitSize>
  </Symbol>
</Symbols>
`

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func TestEngineLoadSymbolFileAtomicRoundTripS1(t *testing.T) {
	var dbOut bytes.Buffer
	open := func(index int, direction string) (io.WriteCloser, error) {
		return nopWriteCloser{&dbOut}, nil
	}

	tr := transport.NewFake()
	e := NewEngine(nil)

	p, err := e.LoadSymbolFile("TESTPLC", strings.NewReader(sampleDoc), LoadOptions{
		Open:      open,
		DBEmit:    dbemit.Options{Naming: naming.Options{Rule: naming.RuleNone}, ServerName: "TESTPLC"},
		Transport: tr,
		Walk:      walker.Options{ExportAll: true},
		ScanConfig: ScanConfig{ReadPeriod: 20 * time.Millisecond, SlowdownMultiple: 1},
	})
	require.NoError(t, err)
	require.Equal(t, 1, p.Registry.Count())
	require.Len(t, p.Groups, 1)
	require.Contains(t, dbOut.String(), "MAIN.x")

	rec, ok := p.Registry.Find("MAIN.x")
	require.True(t, ok)
	require.Equal(t, types.AccessReadOnly, rec.Access)

	tr.Seed(16448, 0, []byte{42, 0})
	p.State.SetConn(types.ConnRun)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	e.Start(ctx)

	require.Eventually(t, func() bool {
		v, err := rec.Cell.ReadFloat(types.SideUser)
		return err == nil && v == 42
	}, 400*time.Millisecond, 10*time.Millisecond)

	require.NoError(t, e.Stop())
}
