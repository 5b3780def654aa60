package types

// state snapshot:
//   version: number // monotonically increasing per mutation
//   teams: [{ id, name, budget, logo?, picks: [{ id, name, price }] }]
//   players: [{ id, name, image?, status, currentBid, highestBidderId?, price }]
//   currentPlayer: player | null // the one under the hammer
//   auctionState: "idle" | "running" | "confirming" | "ended"
//   remainingTime: number // seconds, server-authoritative
//   maxPlayersPerTeam: number // 3 | 4
