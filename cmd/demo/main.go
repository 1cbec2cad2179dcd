package main

import (
	"fmt"
	"os"

	"github.com/quantfabric/matchbook/pkg/engine"
	"github.com/quantfabric/matchbook/pkg/lob"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "demo failed:", err)
		os.Exit(1)
	}
}

func run() error {
	fmt.Println("================================================")
	fmt.Println("      matchbook - Order Book Demo")
	fmt.Println("================================================")
	fmt.Println()

	eng := engine.New()
	eng.CreateBook("AAPL")

	fmt.Println("Adding buy orders...")
	buys := []*lob.Order{
		{ID: 1, Symbol: "AAPL", Side: lob.Buy, Price: price("99.00"), Quantity: qty("100")},
		{ID: 2, Symbol: "AAPL", Side: lob.Buy, Price: price("100.00"), Quantity: qty("200")},
		{ID: 3, Symbol: "AAPL", Side: lob.Buy, Price: price("98.00"), Quantity: qty("150")},
	}
	for _, o := range buys {
		if err := eng.Submit(o); err != nil {
			return err
		}
		fmt.Printf("   Buy  %8s @ $%s\n", o.Quantity, o.Price)
	}
	fmt.Println()

	fmt.Println("Adding sell orders...")
	sells := []*lob.Order{
		{ID: 4, Symbol: "AAPL", Side: lob.Sell, Price: price("101.00"), Quantity: qty("150")},
		{ID: 5, Symbol: "AAPL", Side: lob.Sell, Price: price("102.00"), Quantity: qty("250")},
		{ID: 6, Symbol: "AAPL", Side: lob.Sell, Price: price("100.00"), Quantity: qty("120")},
	}
	for _, o := range sells {
		if err := eng.Submit(o); err != nil {
			return err
		}
		fmt.Printf("   Sell %8s @ $%s\n", o.Quantity, o.Price)
	}
	fmt.Println()

	printTop(eng, "AAPL")

	fmt.Println("Matching...")
	trades, err := eng.Match("AAPL")
	if err != nil {
		return err
	}
	for _, t := range trades {
		fmt.Printf("   Trade #%d: buy %d x sell %d  %s @ $%s\n",
			t.ID, t.BuyOrderID, t.SellOrderID, t.Quantity, t.Price)
	}
	fmt.Println()

	printTop(eng, "AAPL")

	doc, err := eng.SnapshotJSON("AAPL", engine.DefaultDepth)
	if err != nil {
		return err
	}
	fmt.Println("Snapshot:")
	fmt.Println(string(doc))
	return nil
}

func printTop(eng *engine.Engine, symbol string) {
	fmt.Println("Order Book State:")
	if bid, ok := eng.BestBid(symbol); ok {
		fmt.Printf("   Best Bid: $%s\n", bid)
	} else {
		fmt.Println("   Best Bid: -")
	}
	if ask, ok := eng.BestAsk(symbol); ok {
		fmt.Printf("   Best Ask: $%s\n", ask)
	} else {
		fmt.Println("   Best Ask: -")
	}
	fmt.Println()
}

func price(s string) lob.Price {
	p, err := lob.PriceFromString(s)
	if err != nil {
		panic(err)
	}
	return p
}

func qty(s string) lob.Quantity {
	q, err := lob.QuantityFromString(s)
	if err != nil {
		panic(err)
	}
	return q
}
