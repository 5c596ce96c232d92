package bus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindingUnbindIsSafeWithoutEndpoint(t *testing.T) {
	b := &Binding{Name: "orders"}
	assert.NoError(t, b.Unbind())
}

func TestBindingUnbindCallsEndpointStop(t *testing.T) {
	stopped := false
	b := &Binding{
		Name:     "orders",
		Endpoint: EndpointFunc(func() error { stopped = true; return nil }),
	}
	require.NoError(t, b.Unbind())
	assert.True(t, stopped)
}

func TestBindingUnbindPropagatesEndpointError(t *testing.T) {
	wantErr := errors.New("boom")
	b := &Binding{Endpoint: EndpointFunc(func() error { return wantErr })}
	assert.ErrorIs(t, b.Unbind(), wantErr)
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "producer", RoleProducer.String())
	assert.Equal(t, "consumer", RoleConsumer.String())
	assert.Equal(t, "direct", RoleDirect.String())
	assert.Equal(t, "unknown", Role(99).String())
}

func TestBindingTableAddFindRemove(t *testing.T) {
	table := NewBindingTable()
	producer := &Binding{Name: "orders", Role: RoleProducer}
	consumer := &Binding{Name: "orders", Role: RoleConsumer}
	table.Add(producer)
	table.Add(consumer)

	assert.ElementsMatch(t, []*Binding{producer, consumer}, table.FindByName("orders"))
	assert.Equal(t, []*Binding{producer}, table.FindByNameAndRole("orders", RoleProducer))
	assert.Equal(t, []*Binding{consumer}, table.FindByNameAndRole("orders", RoleConsumer))
	assert.Empty(t, table.FindByNameAndRole("orders", RoleDirect))

	require.True(t, table.Remove(producer))
	assert.Equal(t, []*Binding{consumer}, table.FindByName("orders"))
	assert.False(t, table.Remove(producer))
}

func TestBindingTableRemoveLastEntryDropsName(t *testing.T) {
	table := NewBindingTable()
	b := &Binding{Name: "orders", Role: RoleProducer}
	table.Add(b)

	table.Remove(b)
	assert.Empty(t, table.FindByName("orders"))
	assert.NotContains(t, table.Names(), "orders")
}

func TestBindingTableFindAllAndNames(t *testing.T) {
	table := NewBindingTable()
	table.Add(&Binding{Name: "orders", Role: RoleProducer})
	table.Add(&Binding{Name: "billing", Role: RoleConsumer})

	assert.Len(t, table.FindAll(), 2)
	assert.ElementsMatch(t, []string{"orders", "billing"}, table.Names())
}
