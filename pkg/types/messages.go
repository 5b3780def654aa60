package types

// Client -> Server (JSON envelopes, "type" discriminator)
//
// startAuction: {}
// confirmAndNext: {}
// nextPlayer: {}
// reset: {}
// restartUnsold: {}
//
// placeBid:
//   teamId: number
//   amount: number
//
// adminAddTeam:
//   name: string
//
// adminDeleteTeam:
//   teamId: number
//
// adminUpdateTeam (each present field is applied independently):
//   id: number
//   name?: string
//   budget?: number   // also becomes the team's reset baseline
//   logo?: string     // URL from the external upload service
//
// adminAddPlayer:
//   name: string
//
// adminDeletePlayer:
//   playerId: number
//
// adminUpdatePlayer:
//   id: number
//   name?: string
//   image?: string
//
// adminSetConfig:
//   maxPlayersPerTeam: 3 | 4

// Server -> Client (broadcast to every connected client)
//
// state: full snapshot, see snapshot.go; sent after every mutating command
//
// timer:
//   seconds: number // per-second countdown tick
//
// lowTime:
//   seconds: number // fired once, at exactly 10s remaining
//
// errorMessage:
//   message: string // transient notice; clients auto-clear after ~2.5s
//
// bidLog:
//   entry: { teamId, teamName, amount, at } // appended per accepted bid
//
// clearBidLog: {} // sent when advancing rounds
