package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/model"
	"github.com/cryptotycoon/engine/internal/random"
)

// MaxBotStep bounds a bot's per-tick performance change.
const MaxBotStep = 0.01

func findBot(s *model.GameState, botID string) (int, error) {
	for i, b := range s.Bots {
		if b.ID == botID {
			return i, nil
		}
	}
	return -1, reject(ErrUnknownBot, "%q", botID)
}

// DeployTradingBot debits investment from cash and activates the bot.
func (l *Ledger) DeployTradingBot(s *model.GameState, botID string, investment decimal.Decimal) (model.Activity, error) {
	if err := requireFeature(s, "bots"); err != nil {
		return model.Activity{}, err
	}
	if err := requirePositive(investment); err != nil {
		return model.Activity{}, err
	}
	i, err := findBot(s, botID)
	if err != nil {
		return model.Activity{}, err
	}
	bot := s.Bots[i]
	switch {
	case bot.Active:
		return model.Activity{}, reject(ErrBotActive, "%q", botID)
	case investment.LessThan(bot.MinInvestment):
		return model.Activity{}, reject(ErrBelowMinInvestment, "%s < %s", investment, bot.MinInvestment)
	case investment.GreaterThan(s.Player.Cash):
		return model.Activity{}, reject(ErrInsufficientFunds, "investment %s, cash %s", investment, s.Player.Cash)
	}

	now := l.clock.Now()
	bot.Active = true
	bot.Investment = investment
	bot.Performance = 0
	bot.Trades = 0
	bot.StartTime = &now
	s.Bots[i] = bot
	s.Player.Cash = s.Player.Cash.Sub(investment)
	Revalue(s)
	return model.Activity{Kind: model.ActivityBotDeploy, Volume: investment}, nil
}

// StopTradingBot credits investment × (1 + performance) to cash and returns
// the bot to dormant. Only a positive result counts toward lifetime bot
// rewards. It returns the amount credited.
func (l *Ledger) StopTradingBot(s *model.GameState, botID string) (decimal.Decimal, error) {
	if err := requireFeature(s, "bots"); err != nil {
		return decimal.Zero, err
	}
	i, err := findBot(s, botID)
	if err != nil {
		return decimal.Zero, err
	}
	bot := s.Bots[i]
	if !bot.Active {
		return decimal.Zero, reject(ErrBotInactive, "%q", botID)
	}

	returns := bot.Value()
	if profit := returns.Sub(bot.Investment); profit.IsPositive() {
		s.Player.BotRewards = s.Player.BotRewards.Add(profit)
	}
	s.Player.Cash = s.Player.Cash.Add(returns)

	bot.Active = false
	bot.Investment = decimal.Zero
	bot.Performance = 0
	bot.StartTime = nil
	s.Bots[i] = bot
	Revalue(s)
	return returns, nil
}

// AdvanceBots random-walks every active bot's performance by up to ±1% and
// counts one trade per bot. Performance never drops below −100%.
func (l *Ledger) AdvanceBots(s *model.GameState) error {
	if err := requireFeature(s, "bots"); err != nil {
		return err
	}
	for i, b := range s.Bots {
		if !b.Active {
			continue
		}
		b.Performance += random.Uniform(l.rng, MaxBotStep)
		if b.Performance < -1 {
			b.Performance = -1
		}
		b.Trades++
		s.Bots[i] = b
	}
	Revalue(s)
	return nil
}
