// Package doubles provides scripted test doubles for the simulator's
// collaborator interfaces: connection strategies with programmable
// acquire/exec behavior and a logger spy capturing ambient log calls.
package doubles
