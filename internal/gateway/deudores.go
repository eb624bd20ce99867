package gateway

import "context"

// Deudores reads the accounts-receivable service.
type Deudores struct {
	client *Client
}

// NewDeudores constructs the gateway.
func NewDeudores(client *Client) *Deudores {
	return &Deudores{client: client}
}

// List returns every debtor with the invoices AR still considers pending.
func (g *Deudores) List(ctx context.Context) ([]Deudor, error) {
	var out []Deudor
	if err := g.client.get(ctx, "/clientes/deudores", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PendingSet flattens the debtor list into the set of pending invoice ids.
func PendingSet(deudores []Deudor) map[int]struct{} {
	set := make(map[int]struct{})
	for _, d := range deudores {
		for _, f := range d.FacturasPendientes {
			set[f.IDFactura] = struct{}{}
		}
	}
	return set
}
