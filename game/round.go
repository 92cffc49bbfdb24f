package game

import "github.com/Fubalt/Blindtest-web-app/domain"

// roundScore returns the credited flags of p for the song at idx, creating
// an empty entry on first access.
func roundScore(p *domain.Player, idx int) domain.RoundScore {
	if p.RoundScores == nil {
		p.RoundScores = make(map[int]domain.RoundScore)
	}
	rs, ok := p.RoundScores[idx]
	if !ok {
		rs = domain.RoundScore{}
		p.RoundScores[idx] = rs
	}
	return rs
}

func commitRoundScore(p *domain.Player, idx int, rs domain.RoundScore) {
	if p.RoundScores == nil {
		p.RoundScores = make(map[int]domain.RoundScore)
	}
	p.RoundScores[idx] = rs
}
