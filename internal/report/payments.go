package report

import (
	"sort"

	"vendas/internal/core"
)

// paymentIntelligence groups the order-payment aggregates by dominant
// payment type, plus the installment breakdown for credit-card orders.
// Everything here counts orders, never item rows.
func paymentIntelligence(payments []core.OrderPayment) ([]PaymentTypeShare, []InstallmentBucket) {
	type typeAcc struct {
		orders int
		total  int64
	}
	types := make(map[string]*typeAcc)
	installments := make(map[int]*typeAcc)
	var grandTotal int64

	for _, p := range payments {
		t := types[p.DominantType]
		if t == nil {
			t = &typeAcc{}
			types[p.DominantType] = t
		}
		t.orders++
		t.total += p.Total.Centavos
		grandTotal += p.Total.Centavos

		if p.DominantType == core.PaymentCreditCard {
			b := installments[p.MaxInstallments]
			if b == nil {
				b = &typeAcc{}
				installments[p.MaxInstallments] = b
			}
			b.orders++
			b.total += p.Total.Centavos
		}
	}

	shares := make([]PaymentTypeShare, 0, len(types))
	for name, t := range types {
		share := PaymentTypeShare{
			Type:       name,
			Orders:     t.orders,
			TotalValue: core.Money{Centavos: t.total},
		}
		if grandTotal > 0 {
			share.PctOfTotal = Percent(float64(t.total) * 100 / float64(grandTotal))
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].TotalValue.Centavos != shares[j].TotalValue.Centavos {
			return shares[i].TotalValue.Centavos > shares[j].TotalValue.Centavos
		}
		return shares[i].Type < shares[j].Type
	})

	buckets := make([]InstallmentBucket, 0, len(installments))
	for n, b := range installments {
		buckets = append(buckets, InstallmentBucket{
			Installments: n,
			Orders:       b.orders,
			TotalValue:   core.Money{Centavos: b.total},
		})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Installments < buckets[j].Installments })

	return shares, buckets
}
