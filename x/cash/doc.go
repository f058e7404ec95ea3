/*
Package cash keeps wallets of the treasury currency. Funds released by a
finalized proposal end up in the wallet of the proposal recipient.
*/
package cash
