package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cloudx-io/escrowhouse/client"
)

func main() {
	var (
		addr      = flag.String("addr", "127.0.0.1:7700", "auctiond TCP address")
		vsockCID  = flag.Uint("vsock-cid", 0, "dial vsock with this context ID instead of TCP")
		vsockPort = flag.Uint("vsock-port", 5000, "vsock port (with -vsock-cid)")
		caller    = flag.String("caller", "", "caller identity (UUID)")
		bidder    = flag.String("bidder", "", "acted-on bidder identity (UUID), where the operation takes one")
		code      = flag.Int64("code", 0, "product code")
		amount    = flag.String("amount", "", "bid amount or starting price")
		start     = flag.Int64("start", 0, "auction start (unix seconds, set-timing)")
		end       = flag.Int64("end", 0, "auction end (unix seconds, set-timing)")
		help      = flag.Bool("help", false, "show usage")
	)
	flag.Parse()

	if *help || flag.NArg() != 1 {
		showUsage()
		if *help {
			os.Exit(0)
		}
		os.Exit(1)
	}
	op := flag.Arg(0)

	var dial client.Dialer
	if *vsockCID != 0 {
		dial = client.VsockDialer(uint32(*vsockCID), uint32(*vsockPort))
	} else {
		dial = client.TCPDialer(*addr)
	}
	c := client.New(dial)

	if op == "ping" {
		exitOn(c.Ping())
		fmt.Println("ok")
		return
	}

	callerID, err := uuid.Parse(*caller)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -caller must be a valid UUID: %v\n", err)
		os.Exit(1)
	}

	switch op {
	case "authorize":
		exitOn(c.Authorize(callerID, mustUUID(*bidder, "-bidder")))
	case "unauthorize":
		exitOn(c.Unauthorize(callerID, mustUUID(*bidder, "-bidder")))
	case "set-timing":
		exitOn(c.SetTiming(callerID, time.Unix(*start, 0), time.Unix(*end, 0)))
	case "start":
		exitOn(c.Start(callerID))
	case "close":
		exitOn(c.Close(callerID))
	case "upsert-product":
		exitOn(c.UpsertProduct(callerID, *code, mustAmount(*amount)))
	case "remove-product":
		exitOn(c.RemoveProduct(callerID, *code))
	case "bid":
		if *bidder != "" {
			exitOn(c.BidAs(callerID, mustUUID(*bidder, "-bidder"), *code, mustAmount(*amount)))
		} else {
			exitOn(c.Bid(callerID, *code, mustAmount(*amount)))
		}
	case "withdraw":
		if *bidder != "" {
			exitOn(c.WithdrawFor(callerID, mustUUID(*bidder, "-bidder")))
		} else {
			exitOn(c.Withdraw(callerID))
		}
	case "current-bid":
		v, err := c.CurrentBid(callerID, mustUUID(*bidder, "-bidder"), *code)
		exitOn(err)
		fmt.Println(v.String())
		return
	case "highest-bid":
		v, err := c.HighestBid(callerID, *code)
		exitOn(err)
		fmt.Println(v.String())
		return
	case "balance-of":
		id := callerID
		if *bidder != "" {
			id = mustUUID(*bidder, "-bidder")
		}
		v, err := c.BalanceOf(callerID, id)
		exitOn(err)
		fmt.Println(v.String())
		return
	case "winners":
		winners, err := c.Winners(callerID)
		exitOn(err)
		out, err := json.MarshalIndent(winners, "", "  ")
		exitOn(err)
		fmt.Println(string(out))
		return
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown operation %q\n", op)
		showUsage()
		os.Exit(1)
	}
	fmt.Println("ok")
}

func mustUUID(raw, flagName string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s must be a valid UUID: %v\n", flagName, err)
		os.Exit(1)
	}
	return id
}

func mustAmount(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -amount must be a decimal number: %v\n", err)
		os.Exit(1)
	}
	return d
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

func showUsage() {
	fmt.Fprintf(os.Stderr, `Usage: auctionctl [flags] <operation>

Operations:
  ping                              check the server is up
  authorize / unauthorize           manage bidders (-bidder)
  set-timing                        fix the bidding window (-start, -end)
  start / close                     drive a manual auction
  upsert-product / remove-product   manage the catalog (-code, -amount)
  bid                               place a bid (-code, -amount; -bidder to act on behalf)
  withdraw                          reclaim unlocked funds (-bidder to act on behalf)
  current-bid / highest-bid         inspect the ledger (-code, -bidder)
  balance-of                        inspect escrow (-bidder optional)
  winners                           print the post-auction report

Flags:
`)
	flag.PrintDefaults()
}
