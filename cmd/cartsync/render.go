package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dwikikusuma/cart-sync/internal/cartsync/domain"
	orderdomain "github.com/dwikikusuma/cart-sync/internal/order/domain"
)

func printView(w io.Writer, v domain.View) {
	if v.Advisory != nil {
		fmt.Fprintf(w, "! %s\n", v.Advisory.Message)
	}

	if len(v.Items) == 0 {
		fmt.Fprintf(w, "cart is empty (%s)\n", v.Mode())
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tQTY\tPRICE\tLINE")
	for _, it := range v.Items {
		name, price := "?", 0.0
		if it.Product != nil {
			name, price = it.Product.Name, it.Product.Price
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\t%.2f\n", it.ID, name, it.Quantity, price, it.LineTotal())
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "%d item(s), total %.2f (%s)\n", v.Count(), v.Total, v.Mode())
}

func printOrder(w io.Writer, o orderdomain.Order) {
	fmt.Fprintf(w, "order #%d placed: %.2f (%s)\n", o.ID, o.TotalPrice, o.Status)
}
